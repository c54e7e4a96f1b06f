package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/tanveerafzal/id-verify-sub000/pkg/api"
	"github.com/tanveerafzal/id-verify-sub000/pkg/realms"
	"github.com/tanveerafzal/id-verify-sub000/pkg/session"
)

func parseRealm(name string) (session.Realm, error) {
	switch name {
	case "partner":
		return session.RealmPartner, nil
	case "admin":
		return session.RealmAdmin, nil
	case "user":
		return session.RealmUser, nil
	}
	return "", fmt.Errorf("unknown realm %q (want partner, admin or user)", name)
}

// wait runs fn behind a terminal spinner.
func wait[T any](label string, fn func() api.Envelope[T]) api.Envelope[T] {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Suffix = " " + label
	sp.Start()
	defer sp.Stop()
	return fn()
}

func commandLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	realmName := fs.String("realm", "partner", "Realm to sign in to")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	fs.Parse(args)

	realm, err := parseRealm(*realmName)
	if err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}
	secret := strings.TrimSpace(*password)
	if secret == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Print("\n")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		secret = string(raw)
	}

	tk, err := newToolkit()
	if err != nil {
		return err
	}
	creds := realms.Credentials{Email: *email, Password: secret}
	ctx := context.Background()

	var status int
	var errMsg string
	switch realm {
	case session.RealmPartner:
		env := wait("signing in", func() api.Envelope[realms.PartnerProfile] {
			return realms.NewPartner(tk.client, tk.sessions).Login(ctx, creds)
		})
		status, errMsg = env.Status, env.Error
		if env.OK {
			fmt.Printf("signed in as %s (%s)\n", env.Data.CompanyName, env.Data.Email)
		}
	case session.RealmAdmin:
		env := wait("signing in", func() api.Envelope[realms.AdminProfile] {
			return realms.NewAdmin(tk.client, tk.sessions).Login(ctx, creds)
		})
		status, errMsg = env.Status, env.Error
		if env.OK {
			fmt.Printf("signed in as %s (%s)\n", env.Data.Name, env.Data.Email)
		}
	default:
		env := wait("signing in", func() api.Envelope[realms.UserProfile] {
			return realms.NewUser(tk.client, tk.sessions).Login(ctx, creds)
		})
		status, errMsg = env.Status, env.Error
		if env.OK {
			fmt.Printf("signed in as %s (%s)\n", env.Data.FullName, env.Data.Email)
		}
	}
	if errMsg != "" {
		return fmt.Errorf("login failed (%d): %s", status, errMsg)
	}
	return nil
}

func commandLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	realmName := fs.String("realm", "", "Realm to sign out of")
	all := fs.Bool("all", false, "Sign out of every realm")
	fs.Parse(args)

	tk, err := newToolkit()
	if err != nil {
		return err
	}
	if *all {
		if err := tk.sessions.ClearAll(); err != nil {
			return err
		}
		fmt.Println("signed out of all realms")
		return nil
	}
	if *realmName == "" {
		return errors.New("--realm or --all is required")
	}
	realm, err := parseRealm(*realmName)
	if err != nil {
		return err
	}
	if err := tk.sessions.Clear(realm); err != nil {
		return err
	}
	fmt.Printf("signed out of %s\n", realm)
	return nil
}

func commandWhoami(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	realmName := fs.String("realm", "partner", "Realm to inspect")
	fs.Parse(args)

	realm, err := parseRealm(*realmName)
	if err != nil {
		return err
	}
	tk, err := newToolkit()
	if err != nil {
		return err
	}
	sess, ok := tk.sessions.Get(realm)
	if !ok {
		return fmt.Errorf("no active %s session; run: idverify login --realm %s", realm, realm)
	}
	if len(sess.Profile) == 0 {
		fmt.Printf("active %s session (no cached profile)\n", realm)
		return nil
	}
	var pretty map[string]any
	if err := json.Unmarshal(sess.Profile, &pretty); err != nil {
		return fmt.Errorf("cached profile unreadable: %w", err)
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
	return nil
}

func commandVerifications(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: idverify verifications <list|get> [flags]")
	}
	sub := args[0]
	rest := args[1:]
	switch sub {
	case "list":
		return verificationsList(rest)
	case "get":
		return verificationsGet(rest)
	}
	return fmt.Errorf("unknown subcommand: %s", sub)
}

func verificationsList(args []string) error {
	fs := flag.NewFlagSet("verifications list", flag.ExitOnError)
	realmName := fs.String("realm", "partner", "Realm to query (partner or admin)")
	status := fs.String("status", "", "Filter by status (admin only)")
	limit := fs.Int("limit", 20, "Maximum rows")
	fs.Parse(args)

	tk, err := newToolkit()
	if err != nil {
		return err
	}
	ctx := context.Background()

	var env api.Envelope[[]realms.Verification]
	switch *realmName {
	case "partner":
		env = wait("fetching verifications", func() api.Envelope[[]realms.Verification] {
			return realms.NewPartner(tk.client, tk.sessions).Verifications(ctx, *limit)
		})
	case "admin":
		env = wait("fetching verifications", func() api.Envelope[[]realms.Verification] {
			return realms.NewAdmin(tk.client, tk.sessions).Verifications(ctx, *status, *limit)
		})
	default:
		return fmt.Errorf("verifications are listed via the partner or admin realm, not %q", *realmName)
	}
	if !env.OK {
		return fmt.Errorf("listing failed (%d): %s", env.Status, env.Error)
	}
	if len(env.Data) == 0 {
		fmt.Println("no verifications found")
		return nil
	}
	fmt.Printf("%-38s %-10s %-12s %-8s %s\n", "ID", "STATUS", "DOCUMENT", "RISK", "CREATED")
	for _, v := range env.Data {
		fmt.Printf("%-38s %-10s %-12s %-8.2f %s\n",
			v.ID, v.Status, v.DocumentType, v.RiskScore, v.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func verificationsGet(args []string) error {
	fs := flag.NewFlagSet("verifications get", flag.ExitOnError)
	realmName := fs.String("realm", "partner", "Realm to query (partner or admin)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: idverify verifications get [flags] <id>")
	}
	id := fs.Arg(0)

	tk, err := newToolkit()
	if err != nil {
		return err
	}
	ctx := context.Background()

	var env api.Envelope[realms.Verification]
	switch *realmName {
	case "partner":
		env = wait("fetching verification", func() api.Envelope[realms.Verification] {
			return realms.NewPartner(tk.client, tk.sessions).Verification(ctx, id)
		})
	case "admin":
		env = wait("fetching verification", func() api.Envelope[realms.Verification] {
			return realms.NewAdmin(tk.client, tk.sessions).Verification(ctx, id)
		})
	default:
		return fmt.Errorf("verifications are fetched via the partner or admin realm, not %q", *realmName)
	}
	if !env.OK {
		return fmt.Errorf("fetch failed (%d): %s", env.Status, env.Error)
	}
	out, _ := json.MarshalIndent(env.Data, "", "  ")
	fmt.Println(string(out))
	return nil
}

func commandCertificate(args []string) error {
	fs := flag.NewFlagSet("certificate", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: idverify certificate <verification-id>")
	}
	id := fs.Arg(0)

	tk, err := newToolkit()
	if err != nil {
		return err
	}
	env := wait("fetching certificate", func() api.Envelope[realms.Certificate] {
		return realms.NewUser(tk.client, tk.sessions).Certificate(context.Background(), id)
	})
	if !env.OK {
		return fmt.Errorf("fetch failed (%d): %s", env.Status, env.Error)
	}
	cert := env.Data
	fmt.Printf("Certificate for verification %s\n", cert.VerificationID)
	fmt.Printf("  Name:     %s\n", cert.FullName)
	fmt.Printf("  Document: %s\n", cert.DocumentType)
	fmt.Printf("  Status:   %s\n", cert.Status)
	fmt.Printf("  Issued:   %s\n", cert.IssuedAt.Format(time.RFC3339))
	if cert.ExpiresAt != nil {
		fmt.Printf("  Expires:  %s\n", cert.ExpiresAt.Format(time.RFC3339))
	}
	if cert.QRCodeURL != "" {
		fmt.Printf("  QR code:  %s\n", cert.QRCodeURL)
	}
	return nil
}
