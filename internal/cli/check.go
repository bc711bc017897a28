package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fabriclab/fabric-pulse/internal/dashboard"
	"github.com/fabriclab/fabric-pulse/internal/eapi"
	"github.com/fabriclab/fabric-pulse/internal/errors"
	"github.com/fabriclab/fabric-pulse/internal/logger"
	"github.com/fabriclab/fabric-pulse/internal/state"
)

type checkOptions = sessionOptions

// checkCommand polls every device exactly once, in parallel, and prints a
// static report. Unreachable devices make the command fail so scripts can
// gate on the exit code.
func checkCommand(opts checkOptions) error {
	cfg, err := loadSessionConfig(opts)
	if err != nil {
		return err
	}

	username, password, err := resolveCredentials(cfg)
	if err != nil {
		return err
	}

	log := logger.Default()
	store := state.NewStore(cfg.Targets)

	clientOpts := eapi.Options{
		Transport: cfg.EAPI.Transport,
		Port:      cfg.EAPI.Port,
		Username:  username,
		Password:  password,
		Insecure:  cfg.EAPI.Insecure,
	}

	var wg sync.WaitGroup
	for _, target := range cfg.Targets {
		wg.Add(1)
		go func(name, host string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
			defer cancel()

			devState, err := eapi.NewClient(host, clientOpts).Fetch(ctx)
			result := state.PollResult{CompletedAt: time.Now(), Seq: 1}
			if err != nil {
				result.Err = eapi.AsError(err)
				log.Debug("check %s failed: %s", name, err)
			} else {
				result.State = devState
			}
			store.Publish(name, result)
		}(target.Name, target.Host)
	}
	wg.Wait()

	snap := store.Read()
	fmt.Println(dashboard.RenderReport(snap))

	if failed := dashboard.Unreached(snap); failed > 0 {
		return errors.New(errors.ErrTargets,
			fmt.Sprintf("%d of %d devices unreachable", failed, len(snap.Entries)),
			"Check management connectivity and eAPI credentials on the failing devices")
	}
	return nil
}
