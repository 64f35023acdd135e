// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

/*
Package writegateway implements the Write Gateway: the human-in-the-loop
approval state machine every external side effect must pass through
before the connector proxy executes it.

A WriteOperation moves through a fixed set of states:

	PROPOSED -> APPROVED -> EXECUTED -> ROLLED_BACK
	PROPOSED -> APPROVED -> EXECUTED -> FAILED
	PROPOSED -> REJECTED
	PROPOSED -> TIMED_OUT

PROPOSED is terminal only via approve, reject, or timeout; a low-risk
operation under an active tenant auto-approval policy skips straight to
APPROVED on propose. Approval of a high or critical risk operation
requires the approving principal's MFA-verified flag. Execution is
triggered automatically on approval and is idempotent on the operation
identifier, since the connector proxy uses that identifier as its
idempotency key.
*/
package writegateway
