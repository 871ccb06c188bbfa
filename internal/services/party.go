package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/repos"
	"github.com/lunchmate/lunchmate-backend/internal/requestdata"
	"github.com/lunchmate/lunchmate-backend/internal/types"
)

var (
	ErrPartyFull     = errors.New("party is full")
	ErrAlreadyMember = errors.New("already a member of this party")
	ErrNotHost       = errors.New("only the host can delete a party")
)

type CreatePartyInput struct {
	Title      string `json:"title"`
	Restaurant string `json:"restaurant"`
	PartyDate  string `json:"party_date"`
	PartyTime  string `json:"party_time"`
	MaxMembers int    `json:"max_members"`
}

type PartyService interface {
	CreateParty(ctx context.Context, input CreatePartyInput) (*types.Party, error)
	GetParty(ctx context.Context, partyID uuid.UUID) (*types.Party, error)
	GetPartiesByDate(ctx context.Context, date string) ([]*types.Party, error)
	JoinParty(ctx context.Context, partyID uuid.UUID) error
	LeaveParty(ctx context.Context, partyID uuid.UUID) error
	DeleteParty(ctx context.Context, partyID uuid.UUID) error
}

type partyService struct {
	db        *gorm.DB
	log       *logger.Logger
	partyRepo repos.PartyRepo
}

func NewPartyService(db *gorm.DB, baseLog *logger.Logger, partyRepo repos.PartyRepo) PartyService {
	return &partyService{
		db:        db,
		log:       baseLog.With("service", "PartyService"),
		partyRepo: partyRepo,
	}
}

// CreateParty records the party and enrolls the host as its first member.
func (ps *partyService) CreateParty(ctx context.Context, input CreatePartyInput) (*types.Party, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("no authenticated session in context")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if _, err := time.Parse("2006-01-02", input.PartyDate); err != nil {
		return nil, fmt.Errorf("invalid party date %q: %w", input.PartyDate, err)
	}
	maxMembers := input.MaxMembers
	if maxMembers == 0 {
		maxMembers = 4
	}
	if maxMembers < 2 || maxMembers > 10 {
		return nil, fmt.Errorf("max members must be between 2 and 10")
	}

	party := &types.Party{
		ID:         uuid.New(),
		HostID:     rd.UserID,
		Title:      strings.TrimSpace(input.Title),
		Restaurant: strings.TrimSpace(input.Restaurant),
		PartyDate:  input.PartyDate,
		PartyTime:  input.PartyTime,
		MaxMembers: maxMembers,
	}
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ps.partyRepo.Create(ctx, tx, party); err != nil {
			return fmt.Errorf("create party: %w", err)
		}
		_, err := ps.partyRepo.AddMember(ctx, tx, &types.PartyMember{
			ID:      uuid.New(),
			PartyID: party.ID,
			UserID:  rd.UserID,
		})
		if err != nil {
			return fmt.Errorf("enroll host: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ps.log.Info("Party created", "party_id", party.ID, "party_date", party.PartyDate)
	return ps.partyRepo.GetByID(ctx, nil, party.ID)
}

func (ps *partyService) GetParty(ctx context.Context, partyID uuid.UUID) (*types.Party, error) {
	return ps.partyRepo.GetByID(ctx, nil, partyID)
}

func (ps *partyService) GetPartiesByDate(ctx context.Context, date string) ([]*types.Party, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return ps.partyRepo.GetByDate(ctx, nil, date)
}

// JoinParty re-reads the party inside the transaction so the capacity check
// and the insert see the same member list.
func (ps *partyService) JoinParty(ctx context.Context, partyID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("no authenticated session in context")
	}
	return ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		party, err := ps.partyRepo.GetByID(ctx, tx, partyID)
		if err != nil {
			return fmt.Errorf("load party: %w", err)
		}
		for _, m := range party.Members {
			if m.UserID == rd.UserID {
				return ErrAlreadyMember
			}
		}
		if len(party.Members) >= party.MaxMembers {
			return ErrPartyFull
		}
		_, err = ps.partyRepo.AddMember(ctx, tx, &types.PartyMember{
			ID:      uuid.New(),
			PartyID: partyID,
			UserID:  rd.UserID,
		})
		return err
	})
}

func (ps *partyService) LeaveParty(ctx context.Context, partyID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("no authenticated session in context")
	}
	return ps.partyRepo.RemoveMember(ctx, nil, partyID, rd.UserID)
}

func (ps *partyService) DeleteParty(ctx context.Context, partyID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("no authenticated session in context")
	}
	party, err := ps.partyRepo.GetByID(ctx, nil, partyID)
	if err != nil {
		return fmt.Errorf("load party: %w", err)
	}
	if party.HostID != rd.UserID {
		return ErrNotHost
	}
	return ps.partyRepo.FullDelete(ctx, nil, partyID)
}
