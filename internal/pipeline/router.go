package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"ariproxy/internal/ari"
	apperrors "ariproxy/pkg/errors"
)

const (
	RouteCommands = "commands"
	RouteEvents   = "events"
)

// Router picks the output topic per message type. Types without an
// override go to the events-and-responses topic.
type Router struct {
	commandsTopic string
	eventsTopic   string
	routes        map[string]string
}

// NewRouter accepts overrides keyed by message type in any case, since
// config loaders lowercase map keys.
func NewRouter(commandsTopic, eventsTopic string, overrides map[string]string) (*Router, error) {
	routes := make(map[string]string, len(overrides))
	for messageType, target := range overrides {
		target = strings.ToLower(target)
		if target != RouteCommands && target != RouteEvents {
			return nil, apperrors.ErrValidation.WithMessage(
				fmt.Sprintf("unknown route %q for message type %s", target, messageType))
		}
		routes[strings.ToLower(messageType)] = target
	}

	return &Router{
		commandsTopic: commandsTopic,
		eventsTopic:   eventsTopic,
		routes:        routes,
	}, nil
}

// UnknownOverrides returns the overridden message types, lowercased and
// sorted, that match no registered ARI message type.
func (r *Router) UnknownOverrides() []string {
	known := make(map[string]struct{}, len(r.routes))
	for _, name := range ari.KnownTypes() {
		known[strings.ToLower(name)] = struct{}{}
	}

	var unknown []string
	for messageType := range r.routes {
		if _, ok := known[messageType]; !ok {
			unknown = append(unknown, messageType)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func (r *Router) Topic(messageType string) string {
	if r.routes[strings.ToLower(messageType)] == RouteCommands {
		return r.commandsTopic
	}
	return r.eventsTopic
}

func (r *Router) CommandsTopic() string {
	return r.commandsTopic
}
