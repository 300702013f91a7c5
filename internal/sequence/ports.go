package sequence

import (
	"context"

	"solopool/internal/wallet"
)

// ServiceManager is the slice of the service manager a sequencer drives.
// Production: *service.Systemd
// Testing: fake recording start requests and scripting activity
type ServiceManager interface {
	Start(ctx context.Context, unit string) error
	IsActive(ctx context.Context, unit string) bool
}

// Provisioner performs the coin's one-time wallet initialization.
// Production: *wallet.Provisioner
// Testing: fake returning a canned record
type Provisioner interface {
	Ensure(ctx context.Context) (wallet.Record, error)
}

// Recorder receives sequencer lifecycle events.
// Production: *journal.Journal
// Testing: fake collecting events
type Recorder interface {
	Record(ctx context.Context, coin, event, detail string)
}
