package domain

import "strings"

// Route is a screen path in the app's navigation tree.
type Route string

const (
	RouteNone     Route = ""
	RouteWelcome  Route = "/(auth)/welcome"
	RouteLogin    Route = "/(auth)/login"
	RouteRegister Route = "/(auth)/register"

	RouteTabs      Route = "/(tabs)"
	RouteJobs      Route = "/(tabs)/jobs"
	RouteJobCreate Route = "/(tabs)/jobs/create"
	RouteSearch    Route = "/(tabs)/search"
	RouteMessages  Route = "/(tabs)/messages"
	RouteProfile   Route = "/(tabs)/profile"
)

// RouteGroup is the top-level area a route belongs to.
type RouteGroup string

const (
	GroupNone RouteGroup = ""
	GroupAuth RouteGroup = "auth"
	GroupTabs RouteGroup = "tabs"
)

// Group returns the area r lives in.
func (r Route) Group() RouteGroup {
	switch {
	case r == "/(auth)" || strings.HasPrefix(string(r), "/(auth)/"):
		return GroupAuth
	case r == RouteTabs || strings.HasPrefix(string(r), string(RouteTabs)+"/"):
		return GroupTabs
	default:
		return GroupNone
	}
}

// ConversationRoute returns the chat screen route for a conversation.
func ConversationRoute(conversationID string) Route {
	return Route(string(RouteMessages) + "/" + conversationID)
}
