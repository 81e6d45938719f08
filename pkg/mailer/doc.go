// Package mailer delivers transactional email. Production traffic goes
// through Postmark; local development writes messages to disk so flows can
// be exercised without an external account.
package mailer
