package tenancy

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sedifex-backend-go/internal/db"
	"sedifex-backend-go/internal/identity"
	"sedifex-backend-go/internal/plans"
	"sedifex-backend-go/internal/timeutil"
)

// Collection names owned by the tenancy core.
const (
	teamMembersCollection = "teamMembers"
	storesCollection      = "stores"
	workspacesCollection  = "workspaces"
)

// Claim keys from earlier schema generations, stripped on every claims write.
var staleClaimKeys = []string{"stores", "activeStoreId", "storeId", "roleByStore"}

// Service implements the callable tenancy operations. All dependencies are
// injected; the service holds no global state.
type Service struct {
	store    db.DocumentStore
	identity identity.Provider
	billing  plans.BillingConfig
	logger   *zap.Logger
}

// NewService creates the tenancy service.
func NewService(store db.DocumentStore, idp identity.Provider, billing plans.BillingConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, identity: idp, billing: billing, logger: logger}
}

// InitializeStore idempotently bootstraps (or re-affirms) the caller as the
// owner of their own tenant: team-member roster entry plus email mirror,
// store record and workspace record, then an owner claims refresh.
//
// Safe to call repeatedly: the storeId, workspace slug and contract window
// are discovered from existing documents and never regenerated, and
// createdAt is written only on first creation.
func (s *Service) InitializeStore(ctx context.Context, req InitializeStoreRequest, call CallableContext) (*InitializeStoreResult, error) {
	if err := AssertAuthenticated(call); err != nil {
		return nil, err
	}

	uid := call.Auth.UID
	token := call.Auth.Token

	emailValue := optionalEmail(token["email"])
	tokenPhone := optionalString(token["phone_number"])

	contact, err := NormalizeContactPayload(req.Contact)
	if err != nil {
		return nil, err
	}

	var requestedPlanID string
	if req.PlanID.Present && (req.PlanID.Value != nil || !req.PlanID.Valid) {
		requestedPlanID = NormalizePlanID(req.PlanID.StringValue())
		if requestedPlanID == "" {
			return nil, NewError(CodeInvalidArgument, "Choose a valid Sedifex plan.")
		}
	}

	resolvedPhone := stringOrNil(tokenPhone)
	if contact.HasPhone {
		resolvedPhone = contact.Phone
	}
	resolvedFirstSignupEmail := stringOrNil(emailValue)
	if contact.HasFirstSignupEmail {
		resolvedFirstSignupEmail = contact.FirstSignupEmail
	}
	var resolvedOwnerName, resolvedBusinessName, resolvedCountry, resolvedTown, resolvedSignupRole *string
	if contact.HasOwnerName {
		resolvedOwnerName = contact.OwnerName
	}
	if contact.HasBusinessName {
		resolvedBusinessName = contact.BusinessName
	}
	if contact.HasCountry {
		resolvedCountry = contact.Country
	}
	if contact.HasTown {
		resolvedTown = contact.Town
	}
	if contact.HasSignupRole {
		resolvedSignupRole = contact.SignupRole
	}

	var result InitializeStoreResult

	err = s.store.RunTransaction(ctx, func(txCtx context.Context, tx db.Transaction) error {
		memberRef := s.store.Collection(teamMembersCollection).Doc(uid)
		memberSnap, err := tx.Get(memberRef)
		if err != nil {
			return err
		}
		existingMember := memberSnap.Data()

		storeID := optionalString(existingMember["storeId"])
		if storeID == "" {
			storeID = uid
		}

		storeRef := s.store.Collection(storesCollection).Doc(storeID)
		storeSnap, err := tx.Get(storeRef)
		if err != nil {
			return err
		}
		existingStore := storeSnap.Data()

		existingSlug := optionalString(existingStore["workspaceSlug"])
		if existingSlug == "" {
			existingSlug = optionalString(existingStore["slug"])
		}
		if existingSlug == "" {
			existingSlug = optionalString(existingStore["storeSlug"])
		}
		workspaceSlug := NormalizeWorkspaceSlug(existingSlug, storeID)

		workspaceRef := s.store.Collection(workspacesCollection).Doc(workspaceSlug)
		workspaceSnap, err := tx.Get(workspaceRef)
		if err != nil {
			return err
		}
		existingWorkspace := workspaceSnap.Data()

		var emailRef db.DocumentRef
		var emailSnap db.Snapshot
		if emailValue != "" {
			emailRef = s.store.Collection(teamMembersCollection).Doc(emailValue)
			if emailSnap, err = tx.Get(emailRef); err != nil {
				return err
			}
		}

		timestamp := timeutil.Now()

		billingPayload, _ := existingStore["billing"].(map[string]any)
		if billingPayload == nil {
			billingPayload = map[string]any{}
		}

		resolvedPlanID := requestedPlanID
		if resolvedPlanID == "" {
			resolvedPlanID = NormalizePlanID(optionalString(billingPayload["planId"]))
		}
		if resolvedPlanID == "" {
			resolvedPlanID = NormalizePlanID(optionalString(existingStore["planId"]))
		}
		if resolvedPlanID == "" {
			resolvedPlanID = "starter"
		}

		trialDuration := time.Duration(s.billing.TrialDays) * 24 * time.Hour
		if trialDuration < 0 {
			trialDuration = 0
		}
		contractStart := timestamp
		if existing := toTimestamp(existingStore["contractStart"]); existing != nil {
			contractStart = *existing
		}
		contractEnd := contractStart.Add(trialDuration)
		if existing := toTimestamp(existingStore["contractEnd"]); existing != nil {
			contractEnd = *existing
		}

		memberData := map[string]any{
			"uid":              uid,
			"email":            anyOrNil(stringOrNil(emailValue)),
			"role":             RoleOwner,
			"storeId":          storeID,
			"phone":            anyOrNil(resolvedPhone),
			"firstSignupEmail": anyOrNil(resolvedFirstSignupEmail),
			"invitedBy":        uid,
			"updatedAt":        timestamp,
			"workspaceSlug":    workspaceSlug,
		}
		applyOptionalMemberFields(memberData, resolvedOwnerName, resolvedBusinessName, resolvedCountry, resolvedTown, resolvedSignupRole)
		if !memberSnap.Exists() {
			memberData["createdAt"] = timestamp
		}
		if err := tx.Set(memberRef, memberData, true); err != nil {
			return err
		}

		if emailRef != nil {
			emailData := copyShallow(memberData)
			emailData["email"] = emailValue
			if !emailSnap.Exists() {
				emailData["createdAt"] = timestamp
			} else {
				delete(emailData, "createdAt")
			}
			if err := tx.Set(emailRef, emailData, true); err != nil {
				return err
			}
		}

		storeData := map[string]any{
			"ownerId":        uid,
			"updatedAt":      timestamp,
			"workspaceSlug":  workspaceSlug,
			"status":         defaultString(optionalString(existingStore["status"]), "Active"),
			"contractStatus": defaultString(optionalString(existingStore["contractStatus"]), "Active"),
		}
		if summary, ok := existingStore["inventorySummary"].(map[string]any); ok && len(summary) > 0 {
			storeData["inventorySummary"] = summary
		} else {
			storeData["inventorySummary"] = map[string]any{
				"trackedSkus":       0,
				"lowStockSkus":      0,
				"incomingShipments": 0,
			}
		}
		if emailValue != "" {
			storeData["ownerEmail"] = emailValue
		}
		if resolvedOwnerName != nil {
			storeData["ownerName"] = *resolvedOwnerName
		}
		if resolvedBusinessName != nil {
			storeData["displayName"] = *resolvedBusinessName
			storeData["businessName"] = *resolvedBusinessName
		}
		if resolvedCountry != nil {
			storeData["country"] = *resolvedCountry
		}
		if resolvedTown != nil {
			storeData["town"] = *resolvedTown
		}
		if resolvedPhone != nil {
			storeData["ownerPhone"] = *resolvedPhone
		}

		billingDetails := copyShallow(billingPayload)
		billingDetails["planId"] = resolvedPlanID
		if optionalString(billingDetails["provider"]) == "" {
			billingDetails["provider"] = s.billing.Provider
		}
		if optionalString(billingDetails["status"]) == "" {
			billingDetails["status"] = "trial"
		}
		if _, ok := billingDetails["trialEndsAt"]; !ok {
			billingDetails["trialEndsAt"] = contractEnd
		}
		storeData["billing"] = billingDetails

		if !storeSnap.Exists() {
			storeData["createdAt"] = timestamp
		}
		storeData["contractStart"] = contractStart
		storeData["contractEnd"] = contractEnd

		if err := tx.Set(storeRef, storeData, true); err != nil {
			return err
		}

		workspaceData := map[string]any{
			"slug":      workspaceSlug,
			"storeId":   storeID,
			"ownerId":   uid,
			"updatedAt": timestamp,
			"planId":    resolvedPlanID,
		}
		if !workspaceSnap.Exists() {
			workspaceData["createdAt"] = timestamp
		}
		if emailValue != "" {
			workspaceData["ownerEmail"] = emailValue
		}
		if resolvedPhone != nil {
			workspaceData["ownerPhone"] = *resolvedPhone
		}
		if resolvedOwnerName != nil {
			workspaceData["ownerName"] = *resolvedOwnerName
		}
		if resolvedBusinessName != nil {
			workspaceData["company"] = *resolvedBusinessName
			workspaceData["displayName"] = *resolvedBusinessName
		}
		if resolvedCountry != nil {
			workspaceData["country"] = *resolvedCountry
		}
		if resolvedTown != nil {
			workspaceData["town"] = *resolvedTown
		}
		if resolvedFirstSignupEmail != nil {
			workspaceData["firstSignupEmail"] = *resolvedFirstSignupEmail
		}
		workspaceData["contractStart"] = contractStart
		workspaceData["contractEnd"] = contractEnd
		workspaceData["status"] = defaultString(optionalString(existingWorkspace["status"]), "active")
		workspaceData["contractStatus"] = defaultString(optionalString(existingWorkspace["contractStatus"]), "active")
		workspaceData["paymentStatus"] = defaultString(optionalString(existingWorkspace["paymentStatus"]), "trial")

		if err := tx.Set(workspaceRef, workspaceData, true); err != nil {
			return err
		}

		result = InitializeStoreResult{
			OK:         true,
			StoreID:    storeID,
			TeamMember: DocumentResult{ID: memberRef.ID(), Data: SerializeDocument(memberData)},
			Store:      DocumentResult{ID: storeRef.ID(), Data: SerializeDocument(storeData)},
			Workspace:  DocumentResult{ID: workspaceRef.ID(), Data: SerializeDocument(workspaceData)},
		}
		return nil
	})
	if err != nil {
		return nil, s.wrapInternal(err, "initialize_store")
	}

	claims, err := s.updateUserClaims(ctx, uid, RoleOwner)
	if err != nil {
		return nil, err
	}
	result.Claims = claims

	s.logger.Info("store initialized",
		zap.String("uid", uid),
		zap.String("storeId", result.StoreID),
	)
	return &result, nil
}

// ResolveStoreAccess re-validates an already-provisioned caller on session
// resume: membership must exist, the store must exist and must not carry an
// inactive status. On success the caller's claims are refreshed to the
// membership's role.
func (s *Service) ResolveStoreAccess(ctx context.Context, call CallableContext) (*ResolveStoreAccessResult, error) {
	if err := AssertAuthenticated(call); err != nil {
		return nil, err
	}

	uid := call.Auth.UID

	memberRef := s.store.Collection(teamMembersCollection).Doc(uid)
	memberSnap, err := memberRef.Get(ctx)
	if err != nil {
		return nil, s.wrapInternal(err, "resolve_store_access")
	}
	if !memberSnap.Exists() {
		return nil, NewError(CodePermissionDenied, noAssignmentMessage)
	}
	memberData := memberSnap.Data()

	storeID := optionalString(memberData["storeId"])
	if storeID == "" {
		storeID = uid
	}
	workspaceSlug := optionalString(memberData["workspaceSlug"])
	if workspaceSlug == "" {
		workspaceSlug = storeID
	}

	storeRef := s.store.Collection(storesCollection).Doc(storeID)
	storeSnap, err := storeRef.Get(ctx)
	if err != nil {
		return nil, s.wrapInternal(err, "resolve_store_access")
	}
	if !storeSnap.Exists() {
		return nil, NewError(CodeFailedPrecondition, noWorkspaceConfigMessage)
	}
	storeData := storeSnap.Data()

	storeStatus := optionalString(storeData["status"])
	if storeStatus == "" {
		storeStatus = optionalString(storeData["contractStatus"])
	}
	if IsInactiveContractStatus(storeStatus) {
		return nil, NewError(CodePermissionDenied, inactiveWorkspaceMessage)
	}

	role := optionalString(memberData["role"])
	if role == "" {
		role = RoleStaff
	}
	claims, err := s.updateUserClaims(ctx, uid, role)
	if err != nil {
		return nil, err
	}

	return &ResolveStoreAccessResult{
		OK:            true,
		StoreID:       storeID,
		WorkspaceSlug: workspaceSlug,
		Claims:        claims,
		TeamMember:    DocumentResult{ID: memberRef.ID(), Data: SerializeDocument(memberData)},
		Store:         DocumentResult{ID: storeRef.ID(), Data: SerializeDocument(storeData)},
	}, nil
}

// ManageStaffAccount lets an owner provision or update a staff (or re-affirm
// an owner) account under their tenant. The target identity is reused when
// the email is known, or created when a password was supplied.
func (s *Service) ManageStaffAccount(ctx context.Context, req ManageStaffAccountRequest, call CallableContext) (*ManageStaffAccountResult, error) {
	if err := AssertOwnerAccess(call); err != nil {
		return nil, err
	}

	storeID, email, role, password, err := normalizeManageStaffRequest(req)
	if err != nil {
		return nil, err
	}
	invitedBy := call.Auth.UID

	record, created, err := s.identity.EnsureUser(ctx, email, password)
	if err != nil {
		s.logger.Error("staff account provisioning failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, NewError(CodeInternal, err.Error())
	}

	err = s.store.RunTransaction(ctx, func(txCtx context.Context, tx db.Transaction) error {
		memberRef := s.store.Collection(teamMembersCollection).Doc(record.UID)
		memberSnap, err := tx.Get(memberRef)
		if err != nil {
			return err
		}
		emailRef := s.store.Collection(teamMembersCollection).Doc(email)
		emailSnap, err := tx.Get(emailRef)
		if err != nil {
			return err
		}

		timestamp := timeutil.Now()
		memberData := map[string]any{
			"uid":       record.UID,
			"email":     email,
			"storeId":   storeID,
			"role":      role,
			"invitedBy": invitedBy,
			"updatedAt": timestamp,
		}
		if !memberSnap.Exists() {
			memberData["createdAt"] = timestamp
		}
		if err := tx.Set(memberRef, memberData, true); err != nil {
			return err
		}

		emailData := copyShallow(memberData)
		emailData["email"] = email
		if !emailSnap.Exists() {
			emailData["createdAt"] = timestamp
		} else {
			delete(emailData, "createdAt")
		}
		return tx.Set(emailRef, emailData, true)
	})
	if err != nil {
		return nil, s.wrapInternal(err, "manage_staff_account")
	}

	claims, err := s.updateUserClaims(ctx, record.UID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("staff account managed",
		zap.String("uid", record.UID),
		zap.String("storeId", storeID),
		zap.String("role", role),
		zap.Bool("created", created),
	)

	return &ManageStaffAccountResult{
		OK:      true,
		Role:    role,
		Email:   email,
		UID:     record.UID,
		Created: created,
		StoreID: storeID,
		Claims:  claims,
	}, nil
}

// updateUserClaims replaces the user's claims with the current set plus the
// given role, stripping claim keys from earlier schema generations.
func (s *Service) updateUserClaims(ctx context.Context, uid, role string) (map[string]any, error) {
	record, err := s.identity.EnsureUID(ctx, uid, "")
	if err != nil {
		return nil, s.wrapInternal(err, "update claims")
	}
	claims := make(map[string]any, len(record.CustomClaims)+1)
	for key, value := range record.CustomClaims {
		claims[key] = value
	}
	claims["role"] = role
	for _, key := range staleClaimKeys {
		delete(claims, key)
	}
	if err := s.identity.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return nil, s.wrapInternal(err, "update claims")
	}
	return claims, nil
}

// wrapInternal preserves typed callable errors and converts everything else
// into an internal error, logging the full cause.
func (s *Service) wrapInternal(err error, operation string) error {
	if callableErr, ok := AsError(err); ok {
		return callableErr
	}
	s.logger.Error("operation failed", zap.String("operation", operation), zap.Error(err))
	return &Error{Code: CodeInternal, Message: "Something went wrong. Try again shortly."}
}

func normalizeManageStaffRequest(req ManageStaffAccountRequest) (storeID, email, role string, password *string, err error) {
	storeID = optionalString(req.StoreID.StringValue())
	email = optionalEmail(req.Email.StringValue())
	role = optionalString(req.Role.StringValue())

	if req.Password.Present && !req.Password.Valid {
		return "", "", "", nil, NewError(CodeInvalidArgument, "Password must be a string when provided")
	}
	if req.Password.Value != nil && *req.Password.Value != "" {
		password = req.Password.Value
	}

	if storeID == "" {
		return "", "", "", nil, NewError(CodeInvalidArgument, "A storeId is required")
	}
	if email == "" {
		return "", "", "", nil, NewError(CodeInvalidArgument, "A valid email is required")
	}
	if role == "" {
		return "", "", "", nil, NewError(CodeInvalidArgument, "A role is required")
	}
	if role != RoleOwner && role != RoleStaff {
		return "", "", "", nil, NewError(CodeInvalidArgument, "Unsupported role requested")
	}
	return storeID, email, role, password, nil
}

func applyOptionalMemberFields(memberData map[string]any, ownerName, businessName, country, town, signupRole *string) {
	if ownerName != nil {
		memberData["name"] = *ownerName
	}
	if businessName != nil {
		memberData["companyName"] = *businessName
	}
	if country != nil {
		memberData["country"] = *country
	}
	if town != nil {
		memberData["town"] = *town
	}
	if signupRole != nil {
		memberData["signupRole"] = *signupRole
	}
}

func stringOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func anyOrNil(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func copyShallow(data map[string]any) map[string]any {
	copied := make(map[string]any, len(data))
	for key, value := range data {
		copied[key] = value
	}
	return copied
}
