package service

import dErrors "agriqcert/pkg/domain-errors"

var (
	errBatchNotFound       = dErrors.New(dErrors.CodeNotFound, "batch not found")
	errBatchRejected       = dErrors.New(dErrors.CodeBatchRejected, "batch was rejected at inspection")
	errBatchNotInspected   = dErrors.New(dErrors.CodeBatchNotInspected, "batch has not been inspected")
	errInspectionNotPassed = dErrors.New(dErrors.CodeInspectionNotPassed, "latest inspection did not pass")
	errAlreadyIssued       = dErrors.New(dErrors.CodeCredentialAlreadyIssued, "batch already has an active credential")
	errCredentialNotFound  = dErrors.New(dErrors.CodeCredentialNotFound, "credential not found")
	errInspectionChanged   = dErrors.New(dErrors.CodeConflict, "inspection changed during issuance, retry")
)
