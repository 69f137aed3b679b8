package audit

import "fmt"

// allowedEvents is the closed taxonomy of events the broker will emit. Any
// caller passing a name outside this set gets an error instead of a
// silently-accepted typo.
var allowedEvents = map[string]struct{}{
	// stream lifecycle
	"stream.created": {},
	"stream.closed":  {},
	"stream.evicted": {},

	// request rejection
	"ingest.rejected":    {},
	"subscribe.rejected": {},
	"admin.unauthorized": {},

	// process
	"system.startup": {},
	"system.shutdown": {},
	"system.error":    {},
}

// Validate reports an error if name is not a recognized event.
func Validate(name string) error {
	if _, ok := allowedEvents[name]; !ok {
		return fmt.Errorf("audit: unknown event: %s", name)
	}
	return nil
}
