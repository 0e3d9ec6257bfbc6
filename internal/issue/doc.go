// SPDX-License-Identifier: MPL-2.0

// Package issue carries depot's user-facing failure reporting.
//
// ActionableError wraps a failure with the operation that was attempted, the
// resource involved and suggested next steps. Each error may point at a guide
// in the catalog (Id, Issue), a markdown document rendered with glamour that
// explains the failure class (unknown resource, missing codebase, artifact not
// found, ...) and how to fix it.
package issue
