package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"broadcast/apperr"
	"broadcast/database"
	"broadcast/models"
)

type StatusService struct {
	statuses database.StatusStore
	users    database.UserStore
	log      *logrus.Logger
}

func NewStatusService(statuses database.StatusStore, users database.UserStore, log *logrus.Logger) *StatusService {
	return &StatusService{statuses: statuses, users: users, log: log}
}

type CreateStatusInput struct {
	UserID    string
	UserName  string
	FirstName string
	Nickname  string
	Caption   string
	Media     []string
}

type StatusLike struct {
	Success bool     `json:"success"`
	Likes   []string `json:"likes"`
	Liked   bool     `json:"liked"`
}

func (s *StatusService) Create(ctx context.Context, in CreateStatusInput) (*models.Status, error) {
	if in.UserID == "" {
		return nil, apperr.Validation("userId is required")
	}
	st := &models.Status{
		UserID:    in.UserID,
		UserName:  in.UserName,
		FirstName: in.FirstName,
		Nickname:  in.Nickname,
		Caption:   in.Caption,
		Media:     in.Media,
	}
	if err := s.statuses.CreateStatus(ctx, st); err != nil {
		return nil, storeErr(err, "Status not found")
	}
	return st, nil
}

// List returns statuses newest first, each with its author's current
// profile. Authors that no longer exist show as "Anonymous".
func (s *StatusService) List(ctx context.Context) ([]models.StatusView, error) {
	statuses, err := s.statuses.ListStatuses(ctx)
	if err != nil {
		return nil, storeErr(err, "Status not found")
	}

	ids := make([]string, 0, len(statuses))
	for _, st := range statuses {
		ids = append(ids, st.UserID)
	}
	users, err := s.users.FindUsersByClerkIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ClerkID] = &users[i]
	}

	out := make([]models.StatusView, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, models.StatusView{Status: st, User: statusAuthor(byID[st.UserID])})
	}
	return out, nil
}

func statusAuthor(u *models.User) models.StatusAuthor {
	if u == nil {
		return models.StatusAuthor{NickName: "Anonymous"}
	}
	nick := u.NickName
	if nick == "" {
		nick = u.FirstName
	}
	if nick == "" {
		nick = "Anonymous"
	}
	return models.StatusAuthor{NickName: nick, FirstName: u.FirstName, LastName: u.LastName, Image: u.Image}
}

func (s *StatusService) ToggleLike(ctx context.Context, id, userID string) (*StatusLike, error) {
	if userID == "" {
		return nil, apperr.Validation("userId is required")
	}
	st, err := s.statuses.FindStatus(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Status not found")
	}
	liked := st.ToggleLike(userID)
	if err := s.statuses.UpdateStatus(ctx, st); err != nil {
		return nil, storeErr(err, "Status not found")
	}
	st.EnsureSlices()
	return &StatusLike{Success: true, Likes: st.Likes, Liked: liked}, nil
}

// Delete removes a status. Only its owner may do so.
func (s *StatusService) Delete(ctx context.Context, id, userID string) error {
	st, err := s.statuses.FindStatus(ctx, id)
	if err != nil {
		return storeErr(err, "Status not found")
	}
	if st.UserID != userID {
		return apperr.Forbidden("Not authorized to delete this status")
	}
	if err := s.statuses.DeleteStatus(ctx, id); err != nil {
		return storeErr(err, "Status not found")
	}
	return nil
}
