package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

// readCredential prompts for an email and a password. The caller wipes the
// returned password.
func (a *App) readCredential() (models.Credential, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return models.Credential{}, err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return models.Credential{}, err
	}

	cred := models.Credential{Email: email, Password: password}
	if err := cred.Validate(); err != nil {
		common.WipeByteArray(password)
		return models.Credential{}, err
	}
	return cred, nil
}

// Anon starts an anonymous session.
func (a *App) Anon(ctx context.Context) error {
	p, err := a.identity.SignInAnonymously(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in anonymously as %s\n", p.ID)
	return nil
}

// Link attaches an email and password to the current anonymous session.
//
// When the credential already belongs to another account the identity
// manager signs into that account instead; the printed ID shows which
// principal is now active.
func (a *App) Link(ctx context.Context) error {
	cred, err := a.readCredential()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(cred.Password)

	p, err := a.identity.Promote(ctx, cred)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", p.ID)
	return nil
}

// Login prompts the user for credentials and signs into a durable account.
func (a *App) Login(ctx context.Context) error {
	cred, err := a.readCredential()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(cred.Password)

	p, err := a.identity.SignIn(ctx, cred)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", p.ID)
	return nil
}

// Logout ends the session. Local journal data is kept.
func (a *App) Logout(ctx context.Context) error {
	a.identity.SignOut(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) Whoami(_ context.Context) error {
	p, ok := a.identity.CurrentPrincipal()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", p.ID, a.identity.State())
	return nil
}
