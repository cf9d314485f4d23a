package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	domainauth "github.com/college-predictor/prompt-manager-fe/internal/domain/auth"
	apperrors "github.com/college-predictor/prompt-manager-fe/internal/errors"
	"github.com/college-predictor/prompt-manager-fe/internal/service"
)

const sessionSettleTimeout = 30 * time.Second

// ensureSession starts the reconciler and, when the persisted record
// alone cannot restore the session, drives a provider sign-in so the
// reconciler has a principal to reconcile. It returns once the state
// machine has settled on an answer.
func ensureSession(cmdCtx *commandContext) (*service.Reconciler, error) {
	svcs, err := cmdCtx.Services()
	if err != nil {
		return nil, err
	}

	rec := svcs.Reconciler
	if err := rec.Start(cmdCtx.Ctx); err != nil {
		return nil, err
	}

	if rec.State() == domainauth.StateUnknown {
		// Fresh process with no restorable session. Sign in with the
		// provider so the listener path can reconcile.
		if err := svcs.Identity.SignIn(cmdCtx.Ctx); err != nil {
			return nil, apperrors.AuthRequiredf("identity sign-in failed (run `promptmgr login`): %v", err)
		}
	}

	waitCtx, cancel := context.WithTimeout(cmdCtx.Ctx, sessionSettleTimeout)
	defer cancel()
	if err := rec.WaitReady(waitCtx); err != nil {
		return nil, fmt.Errorf("wait for session state: %w", err)
	}
	return rec, nil
}

// requireAuthenticated ensures the session settled in the
// authenticated state.
func requireAuthenticated(cmdCtx *commandContext) (*service.Reconciler, error) {
	rec, err := ensureSession(cmdCtx)
	if err != nil {
		return nil, err
	}
	if _, ok := rec.CurrentUser(); !ok {
		return nil, apperrors.AuthRequired("not signed in (run `promptmgr login`)")
	}
	return rec, nil
}

type loginOptions struct {
	Token string
}

func parseLoginFlags(args []string) (loginOptions, error) {
	var opts loginOptions
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.StringVar(&opts.Token, "token", "", "identity token to exchange directly, bypassing the provider")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
	if err != nil {
		return err
	}

	svcs, err := cmdCtx.Services()
	if err != nil {
		return err
	}
	rec := svcs.Reconciler
	if err := rec.Start(cmdCtx.Ctx); err != nil {
		return err
	}

	if opts.Token != "" {
		// Headless path: the caller already holds an identity token.
		if err := rec.Login(cmdCtx.Ctx, opts.Token); err != nil {
			return fmt.Errorf("token exchange: %w", err)
		}
		return writef(os.Stdout, "Session established.\n")
	}

	if err := svcs.Identity.SignIn(cmdCtx.Ctx); err != nil {
		return fmt.Errorf("identity sign-in: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(cmdCtx.Ctx, sessionSettleTimeout)
	defer cancel()
	if err := rec.WaitReady(waitCtx); err != nil {
		return fmt.Errorf("wait for session state: %w", err)
	}

	user, ok := rec.CurrentUser()
	if !ok {
		return apperrors.AuthExchange("sign-in did not produce a session")
	}
	return writef(os.Stdout, "Signed in as %s <%s>\n", user.DisplayName, user.Email)
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	svcs, err := cmdCtx.Services()
	if err != nil {
		return err
	}
	if err := svcs.Reconciler.Logout(cmdCtx.Ctx); err != nil {
		return err
	}
	return writef(os.Stdout, "Signed out.\n")
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	rec, err := ensureSession(cmdCtx)
	if err != nil {
		return err
	}
	user, ok := rec.CurrentUser()
	if !ok {
		return apperrors.AuthRequired("not signed in")
	}
	return writef(os.Stdout, "%s <%s>\n", user.DisplayName, user.Email)
}
