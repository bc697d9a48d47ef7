package domain

import (
	"github.com/yungbote/collabmarket-backend/internal/domain/briefs"
	"github.com/yungbote/collabmarket-backend/internal/domain/contracts"
	"github.com/yungbote/collabmarket-backend/internal/domain/payments"
	"github.com/yungbote/collabmarket-backend/internal/domain/profiles"
	"github.com/yungbote/collabmarket-backend/internal/domain/user"
)

type User = user.User
type BrandProfile = profiles.BrandProfile
type CreatorProfile = profiles.CreatorProfile
type Brief = briefs.Brief
type BriefApplication = briefs.BriefApplication
type Contract = contracts.Contract
type Milestone = contracts.Milestone
type EscrowPayment = payments.EscrowPayment
type CreatorEarning = payments.CreatorEarning

const (
	RoleBrand   = user.RoleBrand
	RoleCreator = user.RoleCreator

	BriefStatusOpen   = briefs.BriefStatusOpen
	BriefStatusClosed = briefs.BriefStatusClosed

	ApplicationStatusPending  = briefs.ApplicationStatusPending
	ApplicationStatusAccepted = briefs.ApplicationStatusAccepted
	ApplicationStatusRejected = briefs.ApplicationStatusRejected

	ContractStatusDraft            = contracts.ContractStatusDraft
	ContractStatusPendingSignature = contracts.ContractStatusPendingSignature
	ContractStatusActive           = contracts.ContractStatusActive
	ContractStatusCompleted        = contracts.ContractStatusCompleted
	ContractStatusCancelled        = contracts.ContractStatusCancelled

	TermsSignaturesKey = contracts.TermsSignaturesKey

	MilestoneStatusPending    = contracts.MilestoneStatusPending
	MilestoneStatusInProgress = contracts.MilestoneStatusInProgress
	MilestoneStatusSubmitted  = contracts.MilestoneStatusSubmitted
	MilestoneStatusApproved   = contracts.MilestoneStatusApproved
	MilestoneStatusPaid       = contracts.MilestoneStatusPaid

	EscrowStatusHeld           = payments.EscrowStatusHeld
	EscrowStatusReleasePending = payments.EscrowStatusReleasePending
	EscrowStatusReleased       = payments.EscrowStatusReleased
	EscrowStatusReleaseFailed  = payments.EscrowStatusReleaseFailed
	EscrowStatusRefundPending  = payments.EscrowStatusRefundPending
	EscrowStatusRefunded       = payments.EscrowStatusRefunded
)

// MilestoneCanTransition re-exports the forward-only milestone status check.
var MilestoneCanTransition = contracts.MilestoneCanTransition
