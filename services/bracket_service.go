package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/beachpoint/portal/brackets"
	"github.com/beachpoint/portal/models"
	"github.com/beachpoint/portal/storage"
)

// BracketBackend — коллекции категории у внешнего бекенда, нужные для
// отображения сетки.
type BracketBackend interface {
	ListGroups(ctx context.Context, token string, tournamentID, categoryID int) ([]models.Group, error)
	ListMatches(ctx context.Context, token string, tournamentID, categoryID int) ([]models.Match, error)
	ListCategoryRegistrations(ctx context.Context, token string, categoryID, tournamentID int) ([]models.CategoryRegistration, error)
}

// GroupView — группа с матчами, у которых обе стороны доведены до игроков.
type GroupView struct {
	Group   models.Group            `json:"group"`
	Matches []brackets.ResolvedMatch `json:"matches"`
}

// BracketView — готовая к отображению сетка категории.
type BracketView struct {
	TournamentID int         `json:"tournament_id"`
	CategoryID   int         `json:"category_id"`
	Groups       []GroupView `json:"groups"`
}

// BracketService собирает сетку категории: забирает группы, матчи и
// регистрации у бекенда, резолвит двойную косвенность Match → Registration
// → Player и рассылает обновления подписчикам комнаты.
type BracketService struct {
	backend BracketBackend
	images  storage.ImageURLResolver
	hub     *brackets.Hub
}

func NewBracketService(bracketBackend BracketBackend, images storage.ImageURLResolver, hub *brackets.Hub) *BracketService {
	return &BracketService{
		backend: bracketBackend,
		images:  images,
		hub:     hub,
	}
}

// GetBracket строит отображаемую сетку. Три коллекции забираются
// параллельно: это независимые чтения одного снапшота данных.
func (s *BracketService) GetBracket(ctx context.Context, token string, tournamentID, categoryID int) (*BracketView, error) {
	var (
		groups        []models.Group
		matches       []models.Match
		registrations []models.CategoryRegistration
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = s.backend.ListGroups(gctx, token, tournamentID, categoryID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.backend.ListMatches(gctx, token, tournamentID, categoryID)
		return err
	})
	g.Go(func() error {
		var err error
		registrations, err = s.backend.ListCategoryRegistrations(gctx, token, categoryID, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch bracket data: %w", err)
	}

	s.enrichAvatars(ctx, registrations)

	resolver := brackets.NewResolver(registrations)
	view := &BracketView{
		TournamentID: tournamentID,
		CategoryID:   categoryID,
		Groups:       make([]GroupView, 0, len(groups)),
	}
	for _, group := range groups {
		gv := GroupView{Group: group, Matches: make([]brackets.ResolvedMatch, 0)}
		for _, m := range brackets.GroupMatches(group, matches) {
			gv.Matches = append(gv.Matches, resolver.ResolveMatch(m))
		}
		view.Groups = append(view.Groups, gv)
	}
	return view, nil
}

// NotifyUpdated рассылает свежую сетку подписчикам комнаты категории.
func (s *BracketService) NotifyUpdated(view *BracketView) {
	if s.hub == nil || view == nil {
		return
	}
	s.hub.BroadcastToRoom(
		brackets.RoomID(view.TournamentID, view.CategoryID),
		brackets.Event{Type: "BRACKET_UPDATED", Payload: view},
	)
}

// enrichAvatars резолвит imageHash игроков в отображаемые ссылки.
// Ошибка резолва сетку не валит: аватар просто не показывается.
func (s *BracketService) enrichAvatars(ctx context.Context, registrations []models.CategoryRegistration) {
	if s.images == nil {
		return
	}
	resolve := func(p *models.Player) {
		if p == nil || p.ImageHash == nil || *p.ImageHash == "" {
			return
		}
		u, err := s.images.ResolveURL(ctx, "avatars/"+*p.ImageHash)
		if err != nil {
			return
		}
		p.AvatarURL = &u
	}
	for i := range registrations {
		resolve(registrations[i].Player1)
		resolve(registrations[i].Player2)
	}
}
