// Package cliconfig provides configuration types and loading for the
// mockserve CLI.
//
// Values are layered with the following precedence (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables
//  3. A .env file in the working directory
//  4. Default values
//
// The process environment always wins over .env: godotenv never overwrites
// a variable that is already set. Sources records where each value came
// from so `mockserve serve --log-level debug` can report it at startup.
package cliconfig
