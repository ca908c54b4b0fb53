package ports

import "phewasview/domain/phewas"

// ProgressBroadcaster delivers load progress to whoever watches a session
type ProgressBroadcaster interface {
	BroadcastLoad(event phewas.LoadEvent)
}
