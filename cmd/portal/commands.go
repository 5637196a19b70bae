// cmd/portal/commands.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"housing-portal/internal/account"
	"housing-portal/internal/api"
	"housing-portal/internal/auth"
	"housing-portal/internal/common/config"
	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
	"housing-portal/internal/contact"
	"housing-portal/internal/dashboard"
	"housing-portal/internal/guard"
	"housing-portal/internal/models"
	"housing-portal/internal/session"
	"housing-portal/internal/wizard"
)

// portalApp holds the interactive shell's wiring.
type portalApp struct {
	cfg        *config.Config
	logger     logger.Logger
	client     *api.Client
	controller *auth.Controller
	monitor    *session.IdleMonitor
	accounts   *account.Service
	contacts   *contact.Service
	tenantOps  *dashboard.Service
	in         *bufio.Scanner
}

func (a *portalApp) run() {
	fmt.Println("Sea of Mountains student portal. Type 'help' for commands.")

	for {
		fmt.Print("> ")
		if !a.in.Scan() {
			return
		}
		a.monitor.Activity()
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration(a.cfg.API.Timeout))
		switch cmd {
		case "help":
			a.printHelp()
		case "login":
			a.cmdLogin(ctx)
		case "register":
			a.cmdRegister(ctx)
		case "reset":
			a.cmdPasswordReset(ctx)
		case "logout":
			a.cmdLogout(ctx)
		case "dashboard":
			a.cmdDashboard(ctx)
		case "refresh":
			a.cmdRefresh(ctx)
		case "rooms":
			a.cmdRooms(ctx)
		case "apply":
			a.cmdApply(ctx)
		case "cancel":
			a.cmdCancelApplication(ctx)
		case "upload":
			a.cmdUpload(ctx, parts[1:])
		case "maintenance":
			a.cmdMaintenance(ctx)
		case "feedback":
			a.cmdFeedback(ctx)
		case "statement":
			a.cmdStatement(ctx)
		case "contact":
			a.cmdContact(ctx)
		case "stay":
			a.monitor.Stay()
		case "quit", "exit":
			cancel()
			return
		default:
			fmt.Printf("Unknown command %q. Type 'help' for commands.\n", cmd)
		}
		cancel()
	}
}

func (a *portalApp) printHelp() {
	fmt.Println(`Commands:
  login        Sign in with email and password
  register     Create a new account
  reset        Request or confirm a password reset
  logout       Sign out
  dashboard    Show your application or tenancy
  refresh      Re-fetch dashboard data
  rooms        List available room types
  apply        Start the accommodation application
  cancel       Cancel a pending application
  upload       Upload a file (upload doc|pop|lease)
  maintenance  Log a maintenance request
  feedback     Rate a resolved maintenance request
  statement    Download your account statement
  contact      Send a message to the office
  stay         Stay signed in after an inactivity warning
  quit         Exit`)
}

// sessionInfo snapshots the controller state for route guarding.
func (a *portalApp) sessionInfo() guard.SessionInfo {
	user, _ := a.controller.CurrentUser()
	return guard.SessionInfo{
		LoggedIn:       a.controller.State() == auth.StateLoggedIn,
		HasApplication: a.controller.HasApplication(),
		IsStaff:        user.IsStaff,
	}
}

func (a *portalApp) requireLogin() bool {
	if guard.Protected(a.sessionInfo()) != guard.Allow {
		fmt.Println("Please sign in first.")
		return false
	}
	return true
}

func (a *portalApp) reportError(err error) {
	if err == nil {
		return
	}
	if std, ok := errs.AsStandard(err); ok {
		fmt.Println(std.Message)
		for field, msg := range errs.FieldErrorsOf(err) {
			fmt.Printf("  %s: %s\n", field, msg)
		}
		return
	}
	fmt.Println(err.Error())
}

// --- Account commands ---

func (a *portalApp) cmdLogin(ctx context.Context) {
	email := a.readLine("Email: ")
	password := a.readLine("Password: ")
	captcha := a.readLine("Captcha token: ")

	if err := a.controller.Login(ctx, email, password, captcha); err != nil {
		a.reportError(err)
		return
	}
	a.monitor.Start()
	if user, ok := a.controller.CurrentUser(); ok {
		fmt.Printf("Signed in as %s.\n", user.FullName())
	}
	if banner := a.controller.BannerError(); banner != "" {
		fmt.Println(banner)
	}
}

func (a *portalApp) cmdRegister(ctx context.Context) {
	form := account.RegistrationForm{
		FirstName:    a.readLine("First name: "),
		LastName:     a.readLine("Last name: "),
		Email:        a.readLine("Email: "),
		PhoneNumber:  a.readLine("Phone number (optional): "),
		Password:     a.readLine("Password: "),
		Password2:    a.readLine("Confirm password: "),
		CaptchaToken: a.readLine("Captcha token: "),
	}
	if err := a.accounts.Register(ctx, form); err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Registration successful! Please log in.")
}

func (a *portalApp) cmdPasswordReset(ctx context.Context) {
	mode := a.readLine("Request a reset email or confirm with a token? (request/confirm): ")
	switch strings.ToLower(mode) {
	case "confirm":
		form := account.ResetConfirmForm{
			UID:       a.readLine("UID: "),
			Token:     a.readLine("Token: "),
			Password:  a.readLine("New password: "),
			Password2: a.readLine("Confirm new password: "),
		}
		detail, err := a.accounts.ConfirmPasswordReset(ctx, form)
		if err != nil {
			a.reportError(err)
			return
		}
		fmt.Println(detail)
	default:
		detail, err := a.accounts.RequestPasswordReset(ctx, a.readLine("Email: "))
		if err != nil {
			a.reportError(err)
			return
		}
		fmt.Println(detail)
	}
}

func (a *portalApp) cmdLogout(ctx context.Context) {
	a.controller.Logout(ctx)
	a.monitor.Stop()
	fmt.Println("Signed out.")
}

func (a *portalApp) cmdRefresh(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	a.client.InvalidateDashboard()
	if err := a.controller.RefreshDashboard(ctx); err != nil {
		a.reportError(err)
		return
	}
	a.cmdDashboard(ctx)
}

// --- Dashboard commands ---

func (a *portalApp) cmdDashboard(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	snapshot := a.controller.Snapshot()
	if snapshot == nil {
		if err := a.controller.RefreshDashboard(ctx); err != nil {
			a.reportError(err)
			return
		}
		snapshot = a.controller.Snapshot()
	}
	if banner := a.controller.BannerError(); banner != "" {
		fmt.Println(banner)
	}

	switch dashboard.SelectView(snapshot) {
	case dashboard.ViewLoading:
		fmt.Println("Loading your dashboard...")
		return
	case dashboard.ViewNoApplication:
		fmt.Println("You have not applied for accommodation yet. Use 'apply' to start.")
	case dashboard.ViewApplicant:
		a.printApplication(snapshot.ApplicationDetails)
	case dashboard.ViewTenantActive, dashboard.ViewTenantFormer:
		a.printTenancy(snapshot.TenantDetails)
		for _, m := range snapshot.MaintenanceRequests {
			fmt.Printf("Maintenance #%d [%s] %s\n", m.ID, m.Status, m.Title)
		}
	}

	for _, ann := range snapshot.Announcements {
		fmt.Printf("Notice: %s - %s\n", ann.Title, ann.Message)
	}
}

func (a *portalApp) printApplication(app *models.Application) {
	pres := dashboard.PresentStatus(app.Status, a.logger)
	fmt.Printf("Application %s: %s\n", app.ReferenceNumber, pres.Label)
	fmt.Printf("Preferred room: %s\n", app.PreferredRoomType)

	if room, ok := dashboard.AssignedRoom(app); ok {
		fmt.Printf("Assigned room: %s (%s)\n", room.RoomNumber, room.RoomType)
	}

	if dashboard.CanCancel(app) {
		fmt.Println("You may cancel this application with 'cancel'.")
	}
	if dashboard.NeedsProofOfPayment(app) {
		fmt.Println("Please upload your proof of payment with 'upload pop'.")
	}
	if docs := dashboard.OutstandingDocuments(app); len(docs) > 0 {
		fmt.Println("Outstanding documents:")
		for _, doc := range docs {
			fmt.Printf("  - %s\n", doc.Name)
		}
		fmt.Println("Upload them with 'upload doc'.")
	}
}

func (a *portalApp) printTenancy(tenant *models.Tenant) {
	if tenant.IsActive {
		fmt.Printf("Room %s, lease %s to %s\n", tenant.RoomNumber, tenant.LeaseStart, tenant.LeaseEnd)
	} else {
		fmt.Println("Your tenancy has ended.")
	}

	bal := dashboard.SummarizeBalance(tenant.Balance)
	if bal.Settled {
		fmt.Println(bal.Label)
	} else {
		fmt.Printf("%s: R%.2f\n", bal.Label, bal.Amount)
	}

	if dashboard.CanUploadLease(tenant) {
		fmt.Println("Please upload your signed lease with 'upload lease'.")
	}

	for _, p := range tenant.Payments {
		fmt.Printf("Payment %s  R%.2f  %s\n", p.Date, p.Amount, p.Status)
	}
	for _, v := range tenant.Violations {
		fmt.Printf("Violation %s: %s\n", v.Date, v.Description)
	}
}

func (a *portalApp) cmdRooms(ctx context.Context) {
	rooms, err := a.client.RoomTypes(ctx)
	if err != nil {
		a.reportError(err)
		return
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].MonthlyRate < rooms[j].MonthlyRate })
	for _, r := range rooms {
		fmt.Printf("%-24s R%.2f/month  %s\n", r.Name, r.MonthlyRate, r.Description)
	}
}

func (a *portalApp) cmdCancelApplication(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	snapshot := a.controller.Snapshot()
	if snapshot == nil {
		fmt.Println("Load your dashboard first.")
		return
	}
	if strings.ToLower(a.readLine("Cancel your application? This cannot be undone. (yes/no): ")) != "yes" {
		return
	}
	if err := a.tenantOps.CancelApplication(ctx, snapshot.ApplicationDetails); err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Application cancelled.")
	a.controller.RefreshDashboard(ctx)
}

func (a *portalApp) cmdUpload(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	kind := ""
	if len(args) > 0 {
		kind = strings.ToLower(args[0])
	} else {
		kind = strings.ToLower(a.readLine("Upload what? (doc/pop/lease): "))
	}

	snapshot := a.controller.Snapshot()
	if snapshot == nil {
		fmt.Println("Load your dashboard first.")
		return
	}

	var err error
	switch kind {
	case "doc":
		name := a.readLine("Document name (as requested): ")
		var file models.Attachment
		if file, err = a.readAttachment("File path: "); err == nil {
			err = a.tenantOps.UploadRequiredDocument(ctx, name, file)
		}
	case "pop":
		var file models.Attachment
		if file, err = a.readAttachment("Proof of payment file: "); err == nil {
			err = a.tenantOps.UploadProofOfPayment(ctx, snapshot.ApplicationDetails, file)
		}
	case "lease":
		var file models.Attachment
		if file, err = a.readAttachment("Signed lease file: "); err == nil {
			err = a.tenantOps.UploadLease(ctx, snapshot.TenantDetails, file)
		}
	default:
		fmt.Println("Expected 'upload doc', 'upload pop' or 'upload lease'.")
		return
	}
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Upload complete.")
	a.controller.RefreshDashboard(ctx)
}

func (a *portalApp) cmdMaintenance(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	form := dashboard.MaintenanceForm{
		Title:       a.readLine("Title: "),
		Description: a.readLine("Description: "),
		Category:    models.MaintenanceCategory(a.readChoice("Category", categoryNames())),
		Priority:    models.MaintenancePriority(a.readChoice("Priority", priorityNames())),
	}
	if path := a.readLine("Photo path (optional): "); path != "" {
		file, err := loadAttachment(path)
		if err != nil {
			a.reportError(err)
			return
		}
		form.Photo = file
	}
	if err := a.tenantOps.CreateMaintenanceRequest(ctx, form); err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Maintenance request logged.")
}

func (a *portalApp) cmdFeedback(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	id, _ := strconv.Atoi(a.readLine("Request number: "))
	rating, _ := strconv.Atoi(a.readLine("Rating (1-5): "))
	form := dashboard.FeedbackForm{
		RequestID: id,
		Rating:    rating,
		Feedback:  a.readLine("Comments (optional): "),
	}
	if err := a.tenantOps.SubmitFeedback(ctx, form); err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Thank you for your feedback.")
}

func (a *portalApp) cmdStatement(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	user, _ := a.controller.CurrentUser()
	stmt, err := a.tenantOps.DownloadStatement(ctx, user)
	if err != nil {
		a.reportError(err)
		return
	}
	if err := os.WriteFile(stmt.Filename, stmt.Data, 0o644); err != nil {
		fmt.Printf("Could not save %s: %v\n", stmt.Filename, err)
		return
	}
	fmt.Printf("Saved %s (%d bytes).\n", stmt.Filename, len(stmt.Data))
}

func (a *portalApp) cmdContact(ctx context.Context) {
	form := contact.Form{
		FullName: a.readLine("Full name: "),
		Email:    a.readLine("Email: "),
		Subject:  a.readLine("Subject: "),
		Message:  a.readLine("Message: "),
	}
	if err := a.contacts.Send(ctx, form); err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Your message has been sent successfully!")
}

// --- Application wizard ---

// wizardFields lists the prompts for each step, in display order. Attachment
// fields are marked so the shell asks for a file path instead of a value.
type fieldPrompt struct {
	key     string
	label   string
	options []string
	file    bool
}

func (a *portalApp) cmdApply(ctx context.Context) {
	info := a.sessionInfo()
	switch guard.Application(info) {
	case guard.Allow:
	case guard.RedirectDashboard:
		fmt.Println(guard.AlreadyAppliedNotice)
		return
	default:
		fmt.Println("Please sign in first.")
		return
	}

	user, _ := a.controller.CurrentUser()
	form := wizard.NewForm(user)

	for !form.Submitted() {
		step := form.Step()
		fmt.Printf("\n-- Step %d of 6: %s --\n", int(step), step.Name())

		if step == wizard.StepAcademicRoom {
			if rooms, err := a.client.RoomTypes(ctx); err == nil {
				fmt.Println("Available room types:")
				for _, r := range rooms {
					fmt.Printf("  %-24s R%.2f/month\n", r.Name, r.MonthlyRate)
				}
			}
		}

		for _, p := range a.stepPrompts(form, step) {
			a.promptField(form, p)
		}

		if step == wizard.StepDocuments {
			if !a.submitWizard(ctx, form) {
				if strings.ToLower(a.readLine("Try again? (yes/no): ")) != "yes" {
					return
				}
			}
			continue
		}

		if !form.Next() {
			a.printWizardErrors(form)
			if strings.ToLower(a.readLine("Fix the highlighted fields? (yes/no): ")) != "yes" {
				return
			}
		}
	}

	fmt.Println("Your application has been submitted. Check your dashboard for its status.")
	a.controller.RefreshDashboard(ctx)
}

func (a *portalApp) submitWizard(ctx context.Context, form *wizard.Form) bool {
	if err := form.Submit(ctx, a.client); err != nil {
		a.reportError(err)
		a.printWizardErrors(form)
		return false
	}
	return true
}

func (a *portalApp) printWizardErrors(form *wizard.Form) {
	keys := make([]string, 0, len(form.Errors))
	for k := range form.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %s\n", k, form.Errors[k])
	}
}

// promptField asks for one field, pre-filling the current value. Empty input
// keeps what is already there.
func (a *portalApp) promptField(form *wizard.Form, p fieldPrompt) {
	if p.file {
		if path := a.readLine(p.label + " (file path): "); path != "" {
			file, err := loadAttachment(path)
			if err != nil {
				fmt.Println(err.Error())
				return
			}
			form.SetAttachment(p.key, file)
		}
		return
	}

	label := p.label
	if len(p.options) > 0 {
		label += " [" + strings.Join(p.options, "/") + "]"
	}
	if current := form.Values[p.key]; current != "" {
		label += fmt.Sprintf(" (%s)", current)
	}
	if value := a.readLine(label + ": "); value != "" {
		form.SetField(p.key, strings.TrimSpace(value))
	}
}

func (a *portalApp) stepPrompts(form *wizard.Form, step wizard.Step) []fieldPrompt {
	switch step {
	case wizard.StepPersonal:
		return []fieldPrompt{
			{key: "first_name", label: "First name"},
			{key: "last_name", label: "Last name"},
			{key: "email", label: "Email"},
			{key: "phone_number", label: "Phone number"},
			{key: "nationality", label: "Nationality"},
			{key: "id_number", label: "ID / passport number"},
			{key: "date_of_birth", label: "Date of birth (YYYY-MM-DD)"},
			{key: "gender", label: "Gender", options: wizard.GenderOptions()},
			{key: "ethnicity", label: "Ethnicity", options: wizard.EthnicityOptions()},
			{key: "address_line_1", label: "Address line 1"},
			{key: "address_line_2", label: "Address line 2 (optional)"},
			{key: "city", label: "City"},
			{key: "postal_code", label: "Postal code"},
			{key: "resided_in_2025", label: "Did you reside with us in 2025?", options: []string{"true", "false"}},
		}
	case wizard.StepAcademicRoom:
		return []fieldPrompt{
			{key: "spu_student_number", label: "SPU student number"},
			{key: "course_of_study", label: "Course of study"},
			{key: "year_of_study", label: "Year of study", options: wizard.YearOfStudyOptions()},
			{key: "preferred_room_type", label: "Preferred room type"},
			{key: "floor_preference", label: "Floor preference (optional)", options: wizard.FloorPreferenceOptions()},
			{key: "preferred_move_in_date", label: "Preferred move-in date (YYYY-MM-DD)"},
		}
	case wizard.StepGuardian:
		return []fieldPrompt{
			{key: "guardian_full_name", label: "Guardian full name"},
			{key: "guardian_relationship", label: "Guardian relationship"},
			{key: "guardian_phone_number", label: "Guardian phone number"},
			{key: "guardian_email", label: "Guardian email"},
			{key: "guardian_address", label: "Guardian address"},
			{key: "secondary_contact_name", label: "Secondary contact name (optional)"},
			{key: "secondary_contact_phone", label: "Secondary contact phone (optional)"},
		}
	case wizard.StepFunding:
		prompts := []fieldPrompt{
			{key: "funding_source", label: "Funding source", options: wizard.FundingSourceOptions()},
		}
		switch form.Values["funding_source"] {
		case wizard.FundingNSFAS:
			prompts = append(prompts,
				fieldPrompt{key: "nsfas_reference_number", label: "NSFAS reference number"},
				fieldPrompt{key: "nsfas_approval_document", label: "NSFAS approval document", file: true},
			)
		case wizard.FundingBursary:
			prompts = append(prompts,
				fieldPrompt{key: "bursary_name", label: "Bursary name"},
				fieldPrompt{key: "bursary_coverage_amount", label: "Coverage amount"},
				fieldPrompt{key: "bursary_contact_person", label: "Bursary contact person"},
				fieldPrompt{key: "bursary_contact_phone", label: "Bursary contact phone"},
				fieldPrompt{key: "bursary_contact_email", label: "Bursary contact email"},
				fieldPrompt{key: "bursary_confirmation_letter", label: "Bursary confirmation letter", file: true},
			)
		case wizard.FundingSelfPaying:
			prompts = append(prompts,
				fieldPrompt{key: "payer_full_name", label: "Responsible payer full name"},
				fieldPrompt{key: "payer_id_number", label: "Payer ID number"},
				fieldPrompt{key: "payer_relationship", label: "Relationship to student"},
				fieldPrompt{key: "payer_phone_number", label: "Payer phone number"},
				fieldPrompt{key: "payer_email", label: "Payer email"},
				fieldPrompt{key: "payer_address", label: "Payer address"},
				fieldPrompt{key: "payer_employment_details", label: "Employment details"},
				fieldPrompt{key: "payer_monthly_income", label: "Monthly income"},
			)
		}
		return prompts
	case wizard.StepMedicalVehicle:
		return []fieldPrompt{
			{key: "medical_conditions", label: "Medical conditions (optional)"},
			{key: "allergies", label: "Allergies (optional)"},
			{key: "has_vehicle", label: "Do you have a vehicle?", options: []string{"true", "false"}},
			{key: "vehicle_details", label: "Vehicle registration and model (if yes)"},
		}
	case wizard.StepDocuments:
		return []fieldPrompt{
			{key: "id_document", label: "Certified ID copy", file: true},
			{key: "proof_of_registration", label: "Proof of registration", file: true},
			{key: "proof_of_deposit", label: "Proof of deposit (optional)", file: true},
		}
	}
	return nil
}

// --- Helpers ---

func (a *portalApp) readChoice(label string, options []string) string {
	value := a.readLine(fmt.Sprintf("%s [%s]: ", label, strings.Join(options, "/")))
	return strings.ToUpper(strings.TrimSpace(value))
}

func categoryNames() []string {
	cats := models.MaintenanceCategories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

func priorityNames() []string {
	pris := models.MaintenancePriorities()
	out := make([]string, len(pris))
	for i, p := range pris {
		out[i] = string(p)
	}
	return out
}

func loadAttachment(path string) (models.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("could not read %s: %w", path, err)
	}
	return models.Attachment{
		Filename:    filepath.Base(path),
		ContentType: contentTypeFor(path),
		Content:     data,
	}, nil
}

func (a *portalApp) readAttachment(prompt string) (models.Attachment, error) {
	return loadAttachment(a.readLine(prompt))
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
