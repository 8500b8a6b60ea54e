package services

import (
	"context"
	"fmt"

	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
)

// CompanyService manages creditor tenants, their subclients, and memberships
type CompanyService struct {
	companyRepo     repository.CompanyRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
}

func NewCompanyService(companyRepo repository.CompanyRepository, notificationSvc *NotificationService, auditSvc *AuditService) *CompanyService {
	return &CompanyService{
		companyRepo:     companyRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
	}
}

func (s *CompanyService) FindByID(ctx context.Context, id uint) (*models.Company, error) {
	return s.companyRepo.FindByID(ctx, id)
}

func (s *CompanyService) List(ctx context.Context, query *repository.ListQuery) ([]models.Company, int64, error) {
	return s.companyRepo.List(ctx, query)
}

func (s *CompanyService) Create(ctx context.Context, company *models.Company, actorID uint, ip, userAgent string) error {
	if company.Name == "" {
		return ErrValidation
	}
	if err := validateTerms(company.PifDiscountPercent, company.PaySetupDiscountPercent, company.MinMonthlyPayPercent); err != nil {
		return err
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return err
	}

	s.notificationSvc.NotifyAdmins(ctx, "Company Onboarded",
		fmt.Sprintf("Company %s was onboarded", company.Name), models.NotificationTypeSystem)
	s.auditSvc.Log(ctx, actorID, "create_company", "company", company.ID, company.Name, ip, userAgent)
	return nil
}

// UpdateTerms changes a company's default negotiation terms. Future offer
// calculations pick the new values up immediately; accepted plans keep the
// terms they were accepted under.
func (s *CompanyService) UpdateTerms(ctx context.Context, companyID uint, pif, paySetup, minMonthly float64, maxDaysFirstPay int, actorID uint, ip, userAgent string) (*models.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, ErrNotFound
	}
	if err := validateTerms(pif, paySetup, minMonthly); err != nil {
		return nil, err
	}
	if maxDaysFirstPay <= 0 {
		return nil, ErrValidation
	}

	company.PifDiscountPercent = pif
	company.PaySetupDiscountPercent = paySetup
	company.MinMonthlyPayPercent = minMonthly
	company.MaxDaysFirstPay = maxDaysFirstPay

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "update_terms", "company", company.ID,
		fmt.Sprintf("pif=%.2f plan=%.2f min_monthly=%.2f max_days=%d", pif, paySetup, minMonthly, maxDaysFirstPay), ip, userAgent)
	return company, nil
}

func (s *CompanyService) Subclients(ctx context.Context, companyID uint) ([]models.Subclient, error) {
	return s.companyRepo.FindSubclientsByCompany(ctx, companyID)
}

func (s *CompanyService) CreateSubclient(ctx context.Context, subclient *models.Subclient, actorID uint, ip, userAgent string) error {
	if subclient.Name == "" || subclient.CompanyID == 0 {
		return ErrValidation
	}
	if err := s.companyRepo.CreateSubclient(ctx, subclient); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actorID, "create_subclient", "subclient", subclient.ID, subclient.Name, ip, userAgent)
	return nil
}

// UpdateSubclientTerms changes a subclient's term overrides. Nil values fall
// back to the company defaults.
func (s *CompanyService) UpdateSubclientTerms(ctx context.Context, subclientID uint, pif, paySetup, minMonthly *float64, maxDaysFirstPay *int, actorID uint, ip, userAgent string) (*models.Subclient, error) {
	subclient, err := s.companyRepo.FindSubclientByID(ctx, subclientID)
	if err != nil {
		return nil, ErrNotFound
	}

	for _, pct := range []*float64{pif, paySetup, minMonthly} {
		if pct != nil && (*pct < 0 || *pct > 100) {
			return nil, ErrValidation
		}
	}

	subclient.PifDiscountPercent = pif
	subclient.PaySetupDiscountPercent = paySetup
	subclient.MinMonthlyPayPercent = minMonthly
	subclient.MaxDaysFirstPay = maxDaysFirstPay

	if err := s.companyRepo.UpdateSubclient(ctx, subclient); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "update_subclient_terms", "subclient", subclient.ID, "", ip, userAgent)
	return subclient, nil
}

// ActiveMembership returns the membership carrying the platform fee
func (s *CompanyService) ActiveMembership(ctx context.Context, companyID uint) (*models.CompanyMembership, error) {
	return s.companyRepo.FindActiveMembership(ctx, companyID)
}

func (s *CompanyService) CreateMembership(ctx context.Context, membership *models.CompanyMembership, actorID uint, ip, userAgent string) error {
	if membership.Fee < 0 || membership.Fee > 100 {
		return ErrValidation
	}
	if err := s.companyRepo.CreateMembership(ctx, membership); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actorID, "create_membership", "company_membership", membership.ID,
		fmt.Sprintf("plan=%s fee=%.2f", membership.PlanName, membership.Fee), ip, userAgent)
	return nil
}

// UpdateMembershipFee changes the platform fee on the active membership.
// Splits on captures already recorded are not recalculated.
func (s *CompanyService) UpdateMembershipFee(ctx context.Context, companyID uint, fee float64, actorID uint, ip, userAgent string) (*models.CompanyMembership, error) {
	if fee < 0 || fee > 100 {
		return nil, ErrValidation
	}

	membership, err := s.companyRepo.FindActiveMembership(ctx, companyID)
	if err != nil {
		return nil, ErrNotFound
	}

	membership.Fee = fee
	if err := s.companyRepo.UpdateMembership(ctx, membership); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "update_membership_fee", "company_membership", membership.ID,
		fmt.Sprintf("fee=%.2f", fee), ip, userAgent)
	return membership, nil
}

func validateTerms(pif, paySetup, minMonthly float64) error {
	for _, pct := range []float64{pif, paySetup, minMonthly} {
		if pct < 0 || pct > 100 {
			return ErrValidation
		}
	}
	return nil
}
