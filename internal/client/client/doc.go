// Package client contains the client-side building blocks of the daybook CLI.
//
// # Overview
//
// The package provides:
//  1. A transport contract (Client, split into AuthClient and DayMirror) to
//     talk to the daybook server: anonymous and credential sign-in, credential
//     linking, sign-out, Ping, and the day mirror calls Exists/Upsert/ListAll.
//  2. A gRPC implementation (GRPCClient) that injects the access token via an
//     interceptor, transparently refreshes an expired token once, and maps
//     gRPC status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations, NewRepositories)
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Remote failures are returned as *common.TransportError wrapping one of
// ErrUnavailable, ErrUnauthorized, common.ErrCredentialAlreadyInUse or the
// raw rpc error; match them with errors.Is / errors.As.
//
// GRPCClient is safe for concurrent use.
package client
