// Package calculator derives the per-member splits of a transaction from an
// equal split or from itemized lines with proportional tax.
package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/models"
)

var (
	ErrZeroSubtotal     = errors.New("subtotal cannot be zero")
	ErrNoParticipants   = errors.New("must have at least one participant")
	ErrNegativeAmount   = errors.New("amounts cannot be negative")
	ErrItemsNotCovering = errors.New("assigned items do not cover the subtotal")
)

// PersonSplit represents the calculated split for one person
type PersonSplit struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// Item represents a single line item of a transaction
type Item struct {
	Description string
	Amount      float64
	AssignedTo  []string
}

// CalculateSplit computes how much each person owes including proportional tax
// Based on the algorithm: person_total = person_subtotal × (1 + (total_tax / bill_subtotal))
func CalculateSplit(items []Item, billTotal float64, billSubtotal float64, participants []string) (map[string]*PersonSplit, error) {
	if billSubtotal == 0 {
		return nil, ErrZeroSubtotal
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if billTotal < 0 || billSubtotal < 0 {
		return nil, ErrNegativeAmount
	}

	tax := billTotal - billSubtotal
	splits := make(map[string]*PersonSplit)

	// Initialize splits for all participants
	for _, p := range participants {
		splits[p] = &PersonSplit{}
	}

	// If no items, split total equally among all participants
	if len(items) == 0 {
		perPersonTotal := billTotal / float64(len(participants))
		perPersonSubtotal := billSubtotal / float64(len(participants))
		perPersonTax := tax / float64(len(participants))

		for _, split := range splits {
			split.Subtotal = perPersonSubtotal
			split.Tax = perPersonTax
			split.Total = perPersonTotal
		}
		return splits, nil
	}

	// Calculate each person's subtotal based on assigned items
	for _, item := range items {
		if item.Amount < 0 {
			return nil, fmt.Errorf("item %q: %w", item.Description, ErrNegativeAmount)
		}
		if len(item.AssignedTo) == 0 {
			continue
		}

		// Split item among assigned people
		perPersonAmount := item.Amount / float64(len(item.AssignedTo))
		for _, person := range item.AssignedTo {
			if split, exists := splits[person]; exists {
				split.Subtotal += perPersonAmount
			}
		}
	}

	// Apply proportional tax and calculate total
	for _, split := range splits {
		split.Tax = split.Subtotal * (tax / billSubtotal)
		split.Total = split.Subtotal + split.Tax
	}

	return splits, nil
}

// EqualSplit divides total evenly among participants, in cents.
func EqualSplit(total float64, participants []string) ([]models.Split, error) {
	return ItemizedSplit(nil, total, total, participants)
}

// ItemizedSplit turns CalculateSplit shares into member splits whose amounts
// add up to total exactly. Shares are truncated to cents and the leftover
// cents go one at a time to participants in input order.
func ItemizedSplit(items []Item, total, subtotal float64, participants []string) ([]models.Split, error) {
	if total == 0 && subtotal == 0 && len(items) == 0 {
		// Nothing to share: everyone owes zero
		if len(participants) == 0 {
			return nil, ErrNoParticipants
		}
		out := make([]models.Split, len(participants))
		for i, p := range participants {
			out[i] = models.Split{MemberID: p}
		}
		return out, nil
	}

	shares, err := CalculateSplit(items, total, subtotal, participants)
	if err != nil {
		return nil, err
	}

	totalCents := decimal.NewFromFloat(total).Shift(2).Round(0).IntPart()

	cents := make([]int64, len(participants))
	var allocated int64
	for i, p := range participants {
		// Round away float noise before truncating to cents
		cents[i] = decimal.NewFromFloat(shares[p].Total).Round(6).Shift(2).Floor().IntPart()
		allocated += cents[i]
	}

	leftover := totalCents - allocated
	if leftover < 0 || leftover > int64(len(participants)) {
		return nil, fmt.Errorf("%w: %d cents unallocated", ErrItemsNotCovering, leftover)
	}
	for i := 0; leftover > 0; i = (i + 1) % len(participants) {
		cents[i]++
		leftover--
	}

	out := make([]models.Split, len(participants))
	for i, p := range participants {
		out[i] = models.Split{
			MemberID: p,
			Amount:   decimal.New(cents[i], -2).InexactFloat64(),
		}
	}
	return out, nil
}
