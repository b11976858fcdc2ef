// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file contains progress reporting types and utilities used by calculators.
package fibonacci

// ProgressUpdate is a data transfer object that encapsulates the progress
// state of a calculation. It is sent over a channel from the calculator to
// the user interface to provide asynchronous progress updates.
type ProgressUpdate struct {
	// CalculatorIndex is a unique identifier for the calculator instance,
	// allowing the UI to distinguish between multiple concurrent calculations.
	CalculatorIndex int
	// Value represents the normalized progress of the calculation, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter defines the functional type for a progress reporting
// callback. Core algorithms report through this simplified interface without
// being coupled to the channel-based communication of the broader application.
type ProgressReporter func(progress float64)

// Global lookup table for powers of 4. The bit loops process at most 64 bits
// (the index is a uint64), so 4^0 through 4^63 cover every step weight.
var powersOf4 [64]float64

func init() {
	powersOf4[0] = 1.0
	for i := 1; i < 64; i++ {
		powersOf4[i] = powersOf4[i-1] * 4.0
	}
}

// CalcTotalWork estimates the total work for the O(log n) bit loops.
// The operands roughly double in size at each doubling step, so the cost of
// step i is modeled as 4^i (multiplication cost grows quadratically with
// operand size in the schoolbook regime). The total is the geometric sum
// (4^numBits - 1) / 3.
//
// Parameters:
//   - numBits: The number of bits in the input index n.
//
// Returns:
//   - float64: A value representing the estimated total work units.
func CalcTotalWork(numBits int) float64 {
	if numBits <= 0 {
		return 0
	}
	return (powerOf4(numBits) - 1) / 3
}

func powerOf4(i int) float64 {
	if i < len(powersOf4) {
		return powersOf4[i]
	}
	p := powersOf4[len(powersOf4)-1]
	for k := len(powersOf4) - 1; k < i; k++ {
		p *= 4.0
	}
	return p
}

// StepWeights returns the per-step work weights for a loop of numBits steps,
// where weights[i] = 4^i. The returned slice aliases a precomputed global
// array and must not be modified.
func StepWeights(numBits int) []float64 {
	if numBits <= 0 {
		return nil
	}
	if numBits > len(powersOf4) {
		numBits = len(powersOf4)
	}
	return powersOf4[:numBits]
}

// ReportStepProgress handles harmonized progress reporting for the bit loops.
// It accumulates the work done for the step identified by stepIndex (0 being
// the cheapest, earliest step) and invokes the reporter when the progress has
// advanced by at least ProgressReportThreshold, or on the first and last step.
//
// Parameters:
//   - reporter: The callback function to report progress.
//   - lastReported: Pointer to the last reported progress value, used to
//     suppress redundant updates.
//   - totalWork: The total estimated work units for the calculation.
//   - workDone: The accumulated work units completed so far.
//   - stepIndex: The index of the step just completed (0-based, cheap first).
//   - numSteps: The total number of steps in the loop.
//   - weights: Per-step weights from StepWeights.
//
// Returns:
//   - float64: The updated cumulative work done.
func ReportStepProgress(reporter ProgressReporter, lastReported *float64, totalWork, workDone float64, stepIndex, numSteps int, weights []float64) float64 {
	if stepIndex < 0 || stepIndex >= len(weights) {
		return workDone
	}
	currentTotalDone := workDone + weights[stepIndex]

	if totalWork > 0 && reporter != nil {
		currentProgress := currentTotalDone / totalWork
		if currentProgress-*lastReported >= ProgressReportThreshold || stepIndex == 0 || stepIndex == numSteps-1 {
			reporter(currentProgress)
			*lastReported = currentProgress
		}
	}
	return currentTotalDone
}
