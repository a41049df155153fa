// Command devtoken prints a bearer token for local use with AUTH_MODE=jwt.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"task-manager-backend/internal/auth"
)

func main() {
	app := cli.NewApp()
	app.Name = "devtoken"
	app.Usage = "mint a JWT for an account/user pair"
	app.Flags = []cli.Flag{
		cli.Int64Flag{Name: "account", Value: 1, Usage: "account id"},
		cli.Int64Flag{Name: "user", Value: 1, Usage: "user id"},
		cli.StringFlag{Name: "secret", EnvVar: "JWT_SECRET", Usage: "HS256 signing secret"},
	}
	app.Action = func(c *cli.Context) error {
		secret := c.String("secret")
		if secret == "" {
			return cli.NewExitError("JWT_SECRET is not set", 1)
		}
		cred := auth.Credential{IDAccount: c.Int64("account"), IDUser: c.Int64("user")}
		if cred.IDAccount <= 0 || cred.IDUser <= 0 {
			return cli.NewExitError("account and user must be positive", 1)
		}

		token, err := auth.GenerateToken([]byte(secret), cred)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
		fmt.Println(token)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}
