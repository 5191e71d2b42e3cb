// Package logger is a standardized event logging framework for build and
// smoke-test runs.
package logger
