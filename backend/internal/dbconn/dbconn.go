// Package dbconn manages the GraphQL server's Postgres connection pool.
//
// Credentials come from the Secrets Manager secret the database construct
// generates (and replicates to secondary regions). Opening the pool is part
// of the server's explicit startup contract: callers must Ping before
// accepting traffic, so no request can observe a half-initialized pool.
package dbconn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Credentials is the JSON shape of an RDS-generated credentials secret.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
}

// SecretsAPI is the part of the Secrets Manager client this package uses.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// FetchCredentials retrieves and decodes the database credentials secret.
func FetchCredentials(ctx context.Context, client SecretsAPI, secretName string) (Credentials, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return Credentials{}, errors.Wrapf(err, "get secret %q", secretName)
	}
	if out.SecretString == nil {
		return Credentials{}, errors.Newf("secret %q has no string value", secretName)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
		return Credentials{}, errors.Wrapf(err, "decode secret %q", secretName)
	}
	if creds.Host == "" || creds.Username == "" {
		return Credentials{}, errors.Newf("secret %q is missing host or username", secretName)
	}

	return creds, nil
}

// DSN builds the Postgres connection string for the given credentials.
// The dbname argument overrides the secret's dbname when non-empty, since
// replicated secrets carry the primary's value.
func DSN(creds Credentials, dbname string) string {
	if dbname == "" {
		dbname = creds.DBName
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(creds.Username, creds.Password),
		Host:   fmt.Sprintf("%s:%d", creds.Host, creds.Port),
		Path:   "/" + dbname,
	}
	return u.String()
}

// NewPool opens a connection pool for the given credentials. The pool is
// created lazily; call Ping to establish and verify a connection before
// serving requests.
func NewPool(ctx context.Context, creds Credentials, dbname string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, DSN(creds, dbname))
	if err != nil {
		return nil, errors.Wrap(err, "create connection pool")
	}
	return pool, nil
}
