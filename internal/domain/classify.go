package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Confidence is the validator's self-reported confidence tier
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ReceiptVerdict is the structured result of an AI receipt validation.
// A verdict is data, not an error: technical failures of the validator
// call never produce a verdict and are handled by the validation worker.
//
// MatchesAmount is recorded as reported but never drives approval:
// classification recomputes the amount match from the extracted amount
// against the operator-configured tolerance, so the thresholds stay under
// our control rather than the provider's.
type ReceiptVerdict struct {
	Fields          ReceiptFields
	IsValid         bool
	MatchesAccount  bool
	MatchesAmount   bool
	MatchesCurrency bool
	Confidence      Confidence
	Errors          []string
}

// ValidationPolicy holds the configurable thresholds for automated settlement
type ValidationPolicy struct {
	// AmountTolerance is the maximum absolute difference between the
	// extracted and expected amounts still treated as a match.
	AmountTolerance decimal.Decimal
	// ReviewThreshold marks a difference large enough to call out as a
	// significant mismatch in the review reason.
	ReviewThreshold decimal.Decimal
}

// DefaultValidationPolicy returns the default thresholds: accept within
// 0.50 of the expected amount, flag differences above 1.00 as significant.
func DefaultValidationPolicy() ValidationPolicy {
	return ValidationPolicy{
		AmountTolerance: decimal.NewFromFloat(0.5),
		ReviewThreshold: decimal.NewFromInt(1),
	}
}

// ClassifyVerdict maps a validator verdict to a settlement event.
//
// Automated rejection is conservative: only a verdict that says the image
// is definitively not a bank receipt rejects outright. Every other
// non-approved outcome (low confidence, amount mismatch beyond tolerance,
// wrong account or currency) parks the contribution for manual review.
// Returns the event plus a human-readable reason for non-approved outcomes.
func ClassifyVerdict(v *ReceiptVerdict, expectedAmount decimal.Decimal, policy ValidationPolicy) (Event, string) {
	if !v.IsValid && isNotAReceipt(v.Errors) {
		return EventValidatorRejected, firstError(v.Errors)
	}

	diff := v.Fields.Amount.Sub(expectedAmount).Abs()

	if v.IsValid &&
		(v.Confidence == ConfidenceHigh || v.Confidence == ConfidenceMedium) &&
		v.MatchesAccount &&
		v.MatchesCurrency &&
		diff.LessThanOrEqual(policy.AmountTolerance) {
		return EventValidatorApproved, ""
	}

	return EventValidatorReview, reviewReason(v, expectedAmount, diff, policy)
}

// isNotAReceipt reports whether the validator definitively said the image
// is not a bank receipt at all
func isNotAReceipt(errs []string) bool {
	for _, e := range errs {
		if strings.Contains(strings.ToLower(e), "not a receipt") {
			return true
		}
	}
	return false
}

func firstError(errs []string) string {
	if len(errs) == 0 {
		return "receipt is not valid"
	}
	return errs[0]
}

func reviewReason(v *ReceiptVerdict, expected, diff decimal.Decimal, policy ValidationPolicy) string {
	reasons := make([]string, 0, 4)

	if !v.IsValid {
		reasons = append(reasons, firstError(v.Errors))
	}
	if v.Confidence == ConfidenceLow {
		reasons = append(reasons, "low validation confidence")
	}
	if !v.MatchesAccount {
		reasons = append(reasons, "receiving account does not match")
	}
	if !v.MatchesCurrency {
		reasons = append(reasons, "currency does not match")
	}
	if diff.GreaterThan(policy.AmountTolerance) {
		if diff.GreaterThan(policy.ReviewThreshold) {
			reasons = append(reasons, "significant amount mismatch: extracted "+v.Fields.Amount.String()+", expected "+expected.String())
		} else {
			reasons = append(reasons, "amount mismatch: extracted "+v.Fields.Amount.String()+", expected "+expected.String())
		}
	}

	if len(reasons) == 0 {
		return "validation inconclusive"
	}
	return strings.Join(reasons, "; ")
}
