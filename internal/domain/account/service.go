package account

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

type LinkRequest struct {
	AccountID   string `json:"account_id" binding:"required"`
	AccountName string `json:"account_name" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

func (s *Service) Link(ctx context.Context, userID int64, req LinkRequest) (*AdAccount, error) {
	exists, err := s.repo.ExistsByAccountID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAccount
	}

	acct := &AdAccount{
		UserID:      userID,
		AccountID:   req.AccountID,
		AccountName: req.AccountName,
		AccessToken: req.AccessToken,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		return nil, err
	}

	s.log.Info("ad account linked",
		zap.Int64("user_id", userID),
		zap.String("account_id", acct.AccountID),
		zap.String("credential_kind", string(acct.CredentialKind)))
	return acct, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*AdAccount, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*AdAccount, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct.UserID != userID {
		return nil, ErrNotOwner
	}
	return acct, nil
}

func (s *Service) Deactivate(ctx context.Context, userID, id int64) error {
	acct, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	acct.IsActive = false
	return s.repo.Update(ctx, acct)
}

// ResolveForUser picks the account campaigns should be created under:
// the explicitly selected one, else the user's first active account, else
// a synthesized placeholder so the pipeline never blocks on setup.
func (s *Service) ResolveForUser(ctx context.Context, userID int64, selectedID *int64) (*AdAccount, error) {
	if selectedID != nil {
		acct, err := s.Get(ctx, userID, *selectedID)
		if err != nil {
			return nil, err
		}
		return acct, nil
	}

	acct, err := s.repo.FirstActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acct != nil {
		return acct, nil
	}
	return s.EnsurePlaceholder(ctx, userID)
}

// EnsurePlaceholder creates the demo account for a user that has none.
func (s *Service) EnsurePlaceholder(ctx context.Context, userID int64) (*AdAccount, error) {
	acct := &AdAccount{
		UserID:      userID,
		AccountID:   fmt.Sprintf("demo_%d", userID),
		AccountName: "Demo Account",
		AccessToken: "demo_token",
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		return nil, err
	}
	s.log.Info("placeholder ad account created", zap.Int64("user_id", userID))
	return acct, nil
}
