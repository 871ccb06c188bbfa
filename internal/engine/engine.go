package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
)

const dateLayout = "2006-01-02"

// Sink receives a successfully published generation, e.g. to mirror it into
// Redis. Sink failures never fail the run.
type Sink interface {
	StoreGeneration(ctx context.Context, generatedFor string, entries map[Key][]RecommendationEntry) error
}

// Engine drives the four stages: availability resolution, matrix build,
// group assembly and cache publication.
type Engine struct {
	log      *logger.Logger
	cfg      Config
	users    UserDirectory
	resolver *AvailabilityResolver
	history  HistoryDirectory
	prefs    PreferenceStore
	cache    *Cache
	sink     Sink
	loc      *time.Location
	flight   singleflight.Group
	now      func() time.Time
}

func New(
	baseLog *logger.Logger,
	cfg Config,
	users UserDirectory,
	commitments CommitmentDirectory,
	history HistoryDirectory,
	prefs PreferenceStore,
	sink Sink,
) (*Engine, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return &Engine{
		log:      baseLog.With("service", "RecommendationEngine"),
		cfg:      cfg,
		users:    users,
		resolver: NewAvailabilityResolver(commitments),
		history:  history,
		prefs:    prefs,
		cache:    NewCache(),
		sink:     sink,
		loc:      loc,
		now:      time.Now,
	}, nil
}

// Lookup never blocks on generation; it reads the last published snapshot.
func (e *Engine) Lookup(userID uuid.UUID, date string) []RecommendationEntry {
	return e.cache.Lookup(userID, date)
}

// GeneratedFor exposes the live generation marker.
func (e *Engine) GeneratedFor() string {
	return e.cache.GeneratedFor()
}

// Generate rebuilds the whole cache for the rolling window once per local
// calendar day. Concurrent callers are coalesced; a call after a completed
// run on the same day is a no-op.
func (e *Engine) Generate(ctx context.Context) error {
	today := e.now().In(e.loc).Format(dateLayout)
	if e.cache.GeneratedFor() == today {
		return nil
	}
	_, err, _ := e.flight.Do("generate", func() (interface{}, error) {
		// Re-check under the flight: a coalesced waiter may arrive after
		// the winner already published today's cache.
		if e.cache.GeneratedFor() == today {
			return nil, nil
		}
		return nil, e.generate(ctx, today)
	})
	return err
}

func (e *Engine) generate(ctx context.Context, today string) error {
	start := e.now()
	population, err := e.users.ActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("load active users: %w", err)
	}
	if len(population) == 0 {
		e.log.Info("No active users, publishing empty generation", "generated_for", today)
		e.cache.Publish(map[Key][]RecommendationEntry{}, today)
		return nil
	}

	counts, err := e.history.ParticipationCounts(ctx)
	if err != nil {
		return fmt.Errorf("load participation counts: %w", err)
	}
	styles, err := e.prefs.LunchStyleByUser(ctx)
	if err != nil {
		return fmt.Errorf("load lunch style preferences: %w", err)
	}

	matrix := BuildMatrix(population, counts)
	shared := newHistoryMemo(e.history)

	result := make(map[Key][]RecommendationEntry)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	base := e.now().In(e.loc)
	for offset := 0; offset <= e.cfg.WindowDays; offset++ {
		day := base.AddDate(0, 0, offset)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		date := day.Format(dateLayout)
		seed := start.UnixNano() + int64(offset)
		g.Go(func() error {
			available, err := e.resolver.Resolve(gctx, date, population)
			if err != nil {
				return err
			}
			asm := NewAssembler(e.cfg, rand.New(rand.NewSource(seed)))
			partial := make(map[Key][]RecommendationEntry, len(population))
			for _, requester := range population {
				groups := asm.Assemble(requester.ID, available, matrix)
				entries := make([]RecommendationEntry, 0, len(groups))
				for _, group := range groups {
					entry := RecommendationEntry{
						RequesterID: requester.ID,
						Date:        date,
						Members:     make([]MemberDescriptor, 0, len(group)),
					}
					for _, member := range group {
						desc, err := e.describeMember(gctx, shared, styles, requester.ID, member, date)
						if err != nil {
							return err
						}
						entry.Members = append(entry.Members, desc)
					}
					entries = append(entries, entry)
				}
				partial[Key{UserID: requester.ID, Date: date}] = entries
			}
			mu.Lock()
			for k, v := range partial {
				result[k] = v
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.log.Warn("Generation aborted, previous cache stays live", "error", err)
		return err
	}

	e.cache.Publish(result, today)
	e.log.Info("Recommendation cache generated",
		"generated_for", today,
		"users", len(population),
		"keys", len(result),
		"elapsed", e.now().Sub(start).String(),
	)

	if e.sink != nil {
		if err := e.sink.StoreGeneration(ctx, today, result); err != nil {
			e.log.Warn("Generation sink failed", "error", err)
		}
	}
	return nil
}

func (e *Engine) describeMember(
	ctx context.Context,
	shared *historyMemo,
	styles map[uuid.UUID]string,
	requesterID uuid.UUID,
	member UserProfile,
	date string,
) (MemberDescriptor, error) {
	nickname := member.Nickname
	if nickname == "" {
		nickname = anonymousNickname
	}
	dates, err := shared.sharedDates(ctx, requesterID, member.ID)
	if err != nil {
		return MemberDescriptor{}, fmt.Errorf("shared history %s: %w", member.ID, err)
	}
	lastDined := firstMeeting
	if d := latestBefore(dates, date); d != "" {
		lastDined = d
	}
	return MemberDescriptor{
		UserID:        member.ID,
		Nickname:      nickname,
		FoodGenres:    member.FoodPreferences,
		LunchStyle:    styles[member.ID],
		LastDinedDate: lastDined,
	}, nil
}

// latestBefore relies on ISO dates ordering lexicographically.
func latestBefore(sortedDates []string, target string) string {
	for i := len(sortedDates) - 1; i >= 0; i-- {
		if sortedDates[i] < target {
			return sortedDates[i]
		}
	}
	return ""
}

type pairKey struct {
	a, b uuid.UUID
}

// historyMemo caches shared-party lookups per unordered pair for the span of
// one run; the same pair surfaces across many dates.
type historyMemo struct {
	history HistoryDirectory
	mu      sync.Mutex
	dates   map[pairKey][]string
}

func newHistoryMemo(history HistoryDirectory) *historyMemo {
	return &historyMemo{history: history, dates: make(map[pairKey][]string)}
}

func (h *historyMemo) sharedDates(ctx context.Context, a, b uuid.UUID) ([]string, error) {
	k := pairKey{a: a, b: b}
	if b.String() < a.String() {
		k = pairKey{a: b, b: a}
	}
	h.mu.Lock()
	cached, ok := h.dates[k]
	h.mu.Unlock()
	if ok {
		return cached, nil
	}
	dates, err := h.history.SharedPartyDates(ctx, k.a, k.b)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.dates[k] = dates
	h.mu.Unlock()
	return dates, nil
}
