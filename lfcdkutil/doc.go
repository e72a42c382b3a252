// Package lfcdkutil provides small helpers shared by the Langfuse CDK constructs.
//
// This package includes helpers for:
//   - Reading the target environment from the CDK context
//   - Stack naming and environment resolution
//   - Region constants for cross-region certificate units
//   - Fargate capacity, health check and Service Connect defaults
package lfcdkutil
