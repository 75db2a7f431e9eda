// Package notifications delivers publication events via ntfy.
//
// The default implementation posts to the ntfy topic URL configured in
// config.toml and degrades to a no-op when no topic is set. Sends are rate
// limited so a sweep that publishes a large backlog does not flood the topic;
// events over the limit are dropped with ErrRateLimited.
package notifications
