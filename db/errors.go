// ABOUTME: Sentinel errors returned by the record store
// ABOUTME: Callers classify not-found and conflict failures with errors.Is
package db

import "errors"

var (
	ErrNotFound             = errors.New("record not found")
	ErrCompanyExists        = errors.New("company already exists")
	ErrContactExists        = errors.New("contact already exists")
	ErrCompanyHasContacts   = errors.New("delete contacts linked to this company first")
	ErrContactHasEmails     = errors.New("delete outreach emails linked to this contact first")
	ErrProfileNotConfigured = errors.New("settings not found")
)
