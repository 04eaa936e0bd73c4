// accountctl grants, revokes and shows account permissions directly against the
// configured store. It is how the first manage_permissions holder is created.
//
//	accountctl grant <username> <permission>
//	accountctl revoke <username> <permission>
//	accountctl show <username>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"account-service/internal/account/domain"
	"account-service/internal/account/repository"
	accountservice "account-service/internal/account/service"
	"account-service/internal/config"
	"account-service/internal/security"
)

const usage = `usage:
  accountctl grant <username> <permission>
  accountctl revoke <username> <permission>
  accountctl show <username>`

var errUsage = errors.New(usage)

// Accounts is the account service surface used by the commands.
type Accounts interface {
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GrantPermission(ctx context.Context, id, name string) (*domain.Account, error)
	RevokePermission(ctx context.Context, id, name string) (*domain.Account, error)
}

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	repo, closer, err := repository.Open(ctx, cfg.StoreDriver, cfg.StoreURL, cfg.MongoDatabase)
	if err != nil {
		fmt.Fprintln(os.Stderr, "store:", err)
		os.Exit(1)
	}
	defer closer.Close()

	accounts, err := accountservice.NewAccountService(repo, security.NewHasher(cfg.BcryptCost))
	if err != nil {
		fmt.Fprintln(os.Stderr, "account service:", err)
		os.Exit(1)
	}

	if err := run(ctx, accounts, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		closer.Close()
		os.Exit(2)
	}
}

func run(ctx context.Context, accounts Accounts, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "show":
		if len(args) != 1 {
			return errUsage
		}
		a, err := accounts.GetByUsername(ctx, args[0])
		if err != nil {
			return fmt.Errorf("show %s: %w", args[0], err)
		}
		printAccount(out, a)
		return nil
	case "grant", "revoke":
		if len(args) != 2 {
			return errUsage
		}
		a, err := accounts.GetByUsername(ctx, args[0])
		if err != nil {
			return fmt.Errorf("%s %s: %w", cmd, args[0], err)
		}
		apply := accounts.GrantPermission
		if cmd == "revoke" {
			apply = accounts.RevokePermission
		}
		a, err = apply(ctx, a.ID, args[1])
		if err != nil {
			return fmt.Errorf("%s %s %s: %w", cmd, args[0], args[1], err)
		}
		printAccount(out, a)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func printAccount(out io.Writer, a *domain.Account) {
	perms := "-"
	if names := a.PermissionNames(); len(names) > 0 {
		perms = strings.Join(names, ",")
	}
	fmt.Fprintf(out, "%s\t%s\t%s\n", a.ID, a.Username, perms)
}
