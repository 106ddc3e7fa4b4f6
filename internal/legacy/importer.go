package legacy

import (
	"context"
	"time"

	"carrental-backend/internal/metrics"
	"carrental-backend/internal/rental"
	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
)

// Source is what the importer reads from; Client satisfies it.
type Source interface {
	Cars(ctx context.Context) ([]Record, error)
	Locations(ctx context.Context) ([]Record, error)
	Orders(ctx context.Context) ([]Record, error)
}

// Report counts one sync pass.
type Report struct {
	Locations int
	Cars      int
	Skipped   int
	// Orders counts legacy orders per normalized status. They are reported,
	// not imported: legacy users have no local accounts.
	Orders map[rental.Status]int
}

// Importer copies the legacy catalogue into the local store, keyed by
// legacy id so repeated runs refresh rather than duplicate.
type Importer struct {
	src Source
	stg storage.IStorage
	dec Decoder
	log logger.ILogger
}

func NewImporter(src Source, stg storage.IStorage, dec Decoder, log logger.ILogger) *Importer {
	return &Importer{src: src, stg: stg, dec: dec, log: log}
}

// Sync runs one pass. Locations go first so cars can be linked to them.
func (im *Importer) Sync(ctx context.Context) (Report, error) {
	rep := Report{Orders: map[rental.Status]int{}}

	locs, err := im.src.Locations(ctx)
	if err != nil {
		return rep, err
	}
	for _, r := range locs {
		loc, err := im.dec.Location(r)
		if err == nil {
			err = im.stg.Location().UpsertLegacy(ctx, &loc)
		}
		if err != nil {
			rep.Skipped++
			metrics.IncLegacySynced("location", "skipped")
			im.log.Warning("legacy location skipped", logger.Error(err))
			continue
		}
		rep.Locations++
		metrics.IncLegacySynced("location", "ok")
	}

	locByLegacy, err := im.locationIndex(ctx)
	if err != nil {
		return rep, err
	}

	cars, err := im.src.Cars(ctx)
	if err != nil {
		return rep, err
	}
	for _, r := range cars {
		cr, err := im.dec.Car(r)
		if err == nil {
			if id, ok := locByLegacy[cr.LegacyLocationID]; ok {
				cr.Car.RentalLocationID = &id
			}
			err = im.stg.Car().UpsertLegacy(ctx, &cr.Car)
		}
		if err != nil {
			rep.Skipped++
			metrics.IncLegacySynced("car", "skipped")
			im.log.Warning("legacy car skipped", logger.Error(err))
			continue
		}
		rep.Cars++
		metrics.IncLegacySynced("car", "ok")
	}

	orders, err := im.src.Orders(ctx)
	if err != nil {
		// older deployments do not expose orders
		im.log.Warning("legacy orders unavailable", logger.Error(err))
		return rep, nil
	}
	for _, r := range orders {
		rec, err := im.dec.Order(r)
		if err != nil {
			continue
		}
		rep.Orders[rec.Order.Status]++
	}
	return rep, nil
}

func (im *Importer) locationIndex(ctx context.Context) (map[int64]uint64, error) {
	locs, err := im.stg.Location().List(ctx, false)
	if err != nil {
		return nil, err
	}
	idx := make(map[int64]uint64, len(locs))
	for _, l := range locs {
		if l.LegacyID != nil {
			idx[*l.LegacyID] = l.ID
		}
	}
	return idx, nil
}

// Run syncs once, then every interval until ctx ends. A zero interval means
// a single pass.
func (im *Importer) Run(ctx context.Context, interval time.Duration) {
	im.syncAndLog(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			im.syncAndLog(ctx)
		}
	}
}

func (im *Importer) syncAndLog(ctx context.Context) {
	start := time.Now()
	rep, err := im.Sync(ctx)
	if err != nil {
		im.log.Error("legacy sync failed", logger.Error(err))
		return
	}
	im.log.Info("legacy sync finished",
		logger.Int("locations", rep.Locations),
		logger.Int("cars", rep.Cars),
		logger.Int("skipped", rep.Skipped),
		logger.Int("orders_seen", ordersSeen(rep.Orders)),
		logger.Duration("took", time.Since(start)))
}

func ordersSeen(m map[rental.Status]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}
