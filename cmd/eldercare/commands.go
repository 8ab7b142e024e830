package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"eldercare/internal/errs"
	"eldercare/internal/models"
	"eldercare/internal/service"
)

type command struct {
	help string
	run  func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"register":        {"Create a family or caregiver account", runRegister},
	"login":           {"Sign in by national id or name", runLogin},
	"logout":          {"Sign out", runLogout},
	"whoami":          {"Show the signed-in user", runWhoami},
	"elder-add":       {"Register an elder under your family account", runElderAdd},
	"elder-update":    {"Edit an elder profile", runElderUpdate},
	"elders":          {"List your elders", runElders},
	"elder":           {"Show one elder", runElder},
	"reminder-add":    {"Add a medication reminder", runReminderAdd},
	"reminder-update": {"Edit a medication reminder", runReminderUpdate},
	"reminder-delete": {"Delete a medication reminder", runReminderDelete},
	"reminders":       {"List an elder's reminders", runReminders},
	"caregivers":      {"List the caregivers linked to an elder", runCaregivers},
	"code-issue":      {"Issue a caregiver link code for an elder", runCodeIssue},
	"code-share":      {"Issue a link code and email it to a caregiver", runCodeShare},
	"redeem":          {"Link yourself to an elder with a code", runRedeem},
	"linked":          {"List the elders you care for", runLinked},
}

var errNotSignedIn = errors.New("not signed in: run 'eldercare login' first")

func parse(fs *flag.FlagSet, args []string) {
	// ExitOnError handles bad flags
	_ = fs.Parse(args)
}

// requireUser returns the signed-in user, optionally checking the role.
func (a *app) requireUser(ctx context.Context, role string) (*models.UserSummary, error) {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNotSignedIn
	}
	if role != "" && user.Role != role {
		return nil, fmt.Errorf("this command requires a %s account", role)
	}
	return user, nil
}

func requireID(fs *flag.FlagSet, name string, v int64) error {
	if v <= 0 {
		fs.Usage()
		return errs.Invalid(name, "a positive id is required")
	}
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "Full name (required)")
	nationalID := fs.String("national-id", "", "National id document number (required)")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (required)")
	role := fs.String("role", models.RoleFamily, "family or caregiver")
	subrole := fs.String("subrole", "", "formal or informal (caregivers only)")
	parse(fs, args)

	user, err := a.auth.Register(ctx, service.RegisterInput{
		Name:       *name,
		NationalID: *nationalID,
		Email:      email,
		Password:   *password,
		Role:       *role,
		Subrole:    subrole,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (id %d, %s)\n", user.Name, user.ID, user.Role)
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	identifier := fs.String("id", "", "National id or name (required)")
	password := fs.String("password", "", "Password (required)")
	parse(fs, args)

	user, err := a.auth.Login(ctx, *identifier, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", user.Name)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	parse(flag.NewFlagSet("logout", flag.ExitOnError), args)
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	parse(flag.NewFlagSet("whoami", flag.ExitOnError), args)
	user, err := a.requireUser(ctx, "")
	if err != nil {
		return err
	}
	role := user.Role
	if user.Subrole != nil {
		role += " (" + *user.Subrole + ")"
	}
	fmt.Printf("%s, id %d, %s\n", user.Name, user.ID, role)
	return nil
}

// elderFlags registers the editable elder fields on fs.
func elderFlags(fs *flag.FlagSet) func() service.ElderInput {
	name := fs.String("name", "", "Full name (required)")
	age := fs.Int64("age", 0, "Age in years")
	address := fs.String("address", "", "Address")
	conditions := fs.String("conditions", "", "Medical conditions")
	allergies := fs.String("allergies", "", "Allergies")
	notes := fs.String("notes", "", "Notes")
	return func() service.ElderInput {
		return service.ElderInput{
			FullName:          *name,
			Age:               age,
			Address:           address,
			MedicalConditions: conditions,
			Allergies:         allergies,
			Notes:             notes,
		}
	}
}

func runElderAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("elder-add", flag.ExitOnError)
	input := elderFlags(fs)
	parse(fs, args)

	user, err := a.requireUser(ctx, models.RoleFamily)
	if err != nil {
		return err
	}
	id, err := a.elders.CreateElder(ctx, user.ID, input())
	if err != nil {
		return err
	}
	fmt.Printf("Elder created with id %d\n", id)
	return nil
}

func runElderUpdate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("elder-update", flag.ExitOnError)
	id := fs.Int64("id", 0, "Elder id (required)")
	input := elderFlags(fs)
	parse(fs, args)
	if err := requireID(fs, "id", *id); err != nil {
		return err
	}

	if _, err := a.requireUser(ctx, models.RoleFamily); err != nil {
		return err
	}
	if err := a.elders.UpdateElder(ctx, *id, input()); err != nil {
		return err
	}
	fmt.Println("Elder updated")
	return nil
}

func runElders(ctx context.Context, a *app, args []string) error {
	parse(flag.NewFlagSet("elders", flag.ExitOnError), args)
	user, err := a.requireUser(ctx, models.RoleFamily)
	if err != nil {
		return err
	}
	elders, err := a.elders.ListElders(ctx, user.ID)
	if err != nil {
		return err
	}
	printElders(elders)
	return nil
}

func runElder(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("elder", flag.ExitOnError)
	id := fs.Int64("id", 0, "Elder id (required)")
	parse(fs, args)
	if err := requireID(fs, "id", *id); err != nil {
		return err
	}

	if _, err := a.requireUser(ctx, ""); err != nil {
		return err
	}
	elder, err := a.elders.GetElder(ctx, *id)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%d\n", elder.ID)
	fmt.Fprintf(w, "Name\t%s\n", elder.FullName)
	fmt.Fprintf(w, "Age\t%s\n", orDash(elder.Age))
	fmt.Fprintf(w, "Address\t%s\n", orDash(elder.Address))
	fmt.Fprintf(w, "Medical conditions\t%s\n", orDash(elder.MedicalConditions))
	fmt.Fprintf(w, "Allergies\t%s\n", orDash(elder.Allergies))
	fmt.Fprintf(w, "Notes\t%s\n", orDash(elder.Notes))
	return w.Flush()
}

func runReminderAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("reminder-add", flag.ExitOnError)
	elderID := fs.Int64("elder", 0, "Elder id (required)")
	name := fs.String("name", "", "Medication name (required)")
	at := fs.String("time", "", "Time of day, e.g. 08:00 (required)")
	parse(fs, args)
	if err := requireID(fs, "elder", *elderID); err != nil {
		return err
	}

	if _, err := a.requireUser(ctx, models.RoleFamily); err != nil {
		return err
	}
	id, err := a.elders.AddReminder(ctx, *elderID, *name, *at)
	if err != nil {
		return err
	}
	fmt.Printf("Reminder created with id %d\n", id)
	return nil
}

func runReminderUpdate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("reminder-update", flag.ExitOnError)
	id := fs.Int64("id", 0, "Reminder id (required)")
	name := fs.String("name", "", "Medication name (required)")
	at := fs.String("time", "", "Time of day, e.g. 08:00 (required)")
	parse(fs, args)
	if err := requireID(fs, "id", *id); err != nil {
		return err
	}

	if _, err := a.requireUser(ctx, models.RoleFamily); err != nil {
		return err
	}
	if err := a.elders.UpdateReminder(ctx, *id, *name, *at); err != nil {
		return err
	}
	fmt.Println("Reminder updated")
	return nil
}

func runReminderDelete(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("reminder-delete", flag.ExitOnError)
	id := fs.Int64("id", 0, "Reminder id (required)")
	parse(fs, args)
	if err := requireID(fs, "id", *id); err != nil {
		return err
	}

	if _, err := a.requireUser(ctx, models.RoleFamily); err != nil {
		return err
	}
	if err := a.elders.DeleteReminder(ctx, *id); err != nil {
		return err
	}
	fmt.Println("Reminder deleted")
	return nil
}

func runReminders(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("reminders", flag.ExitOnError)
	elderID := fs.Int64("elder", 0, "Elder id (required)")
	parse(fs, args)
	if err := requireID(fs, "elder", *elderID); err != nil {
		return err
	}

	if _, err := a.requireUser(ctx, ""); err != nil {
		return err
	}
	reminders, err := a.elders.ListReminders(ctx, *elderID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tMEDICATION")
	for _, r := range reminders {
		fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.Time, r.Name)
	}
	return w.Flush()
}

func runCaregivers(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("caregivers", flag.ExitOnError)
	elderID := fs.Int64("elder", 0, "Elder id (required)")
	parse(fs, args)
	if err := requireID(fs, "elder", *elderID); err != nil {
		return err
	}

	if _, err := a.requireUser(ctx, ""); err != nil {
		return err
	}
	caregivers, err := a.elders.ListCaregivers(ctx, *elderID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND")
	for _, c := range caregivers {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, orDash(c.Subrole))
	}
	return w.Flush()
}

func runCodeIssue(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("code-issue", flag.ExitOnError)
	elderID := fs.Int64("elder", 0, "Elder id (required)")
	parse(fs, args)
	if err := requireID(fs, "elder", *elderID); err != nil {
		return err
	}

	user, err := a.requireUser(ctx, models.RoleFamily)
	if err != nil {
		return err
	}
	code, err := a.links.IssueCode(ctx, *elderID, user.ID)
	if err != nil {
		return err
	}
	fmt.Println(code)
	return nil
}

func runCodeShare(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("code-share", flag.ExitOnError)
	elderID := fs.Int64("elder", 0, "Elder id (required)")
	email := fs.String("email", "", "Caregiver email (required)")
	parse(fs, args)
	if err := requireID(fs, "elder", *elderID); err != nil {
		return err
	}

	user, err := a.requireUser(ctx, models.RoleFamily)
	if err != nil {
		return err
	}
	code, err := a.links.ShareCode(ctx, *elderID, user.ID, *email)
	if err != nil {
		return err
	}
	fmt.Printf("Sent code %s to %s\n", code, *email)
	return nil
}

func runRedeem(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("redeem", flag.ExitOnError)
	code := fs.String("code", "", "Link code (required)")
	parse(fs, args)

	user, err := a.requireUser(ctx, models.RoleCaregiver)
	if err != nil {
		return err
	}
	elderID, err := a.links.Redeem(ctx, user.ID, *code)
	if err != nil {
		return err
	}
	fmt.Printf("Linked to elder %d\n", elderID)
	return nil
}

func runLinked(ctx context.Context, a *app, args []string) error {
	parse(flag.NewFlagSet("linked", flag.ExitOnError), args)
	user, err := a.requireUser(ctx, models.RoleCaregiver)
	if err != nil {
		return err
	}
	elders, err := a.links.ListLinkedElders(ctx, user.ID)
	if err != nil {
		return err
	}
	printElders(elders)
	return nil
}

func printElders(elders []models.Elder) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAGE")
	for _, e := range elders {
		fmt.Fprintf(w, "%d\t%s\t%s\n", e.ID, e.FullName, orDash(e.Age))
	}
	_ = w.Flush()
}

func orDash[T string | int64](v *T) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
