package fhjerrors

import "fmt"

// Phase - Names the part of a join invocation that raised an error
type Phase string

const (
	// PhasePartition - The partition phase
	PhasePartition Phase = "partition"
	// PhaseProbe - The probe phase
	PhaseProbe Phase = "probe"
	// PhaseStorage - Page store or buffer pool operations
	PhaseStorage Phase = "storage"
	// PhaseRelation - Writing or reading relations and results
	PhaseRelation Phase = "relation"
)

// InvalidRange - Custom error to inform that a page range is empty or inverted
type InvalidRange struct {
	Phase Phase
	Start int64
	End   int64
}

// Error - Used to notify that a page range is not usable
func (E InvalidRange) Error() string {
	if E.Phase == "" {
		return "invalid page range"
	}
	return fmt.Sprintf("%s: invalid page range [%d, %d)", E.Phase, E.Start, E.End)
}

// Is - Makes errors.Is match any InvalidRange regardless of phase and bounds
func (E InvalidRange) Is(target error) bool {
	_, ok := target.(InvalidRange)
	return ok
}

// BufferExhausted - Custom error to inform that there are too few buffer slots for a phase
type BufferExhausted struct {
	Phase    Phase
	Slots    int
	Required int
}

// Error - Used to notify that the buffer pool is too small
func (E BufferExhausted) Error() string {
	if E.Phase == "" {
		return "buffer exhausted"
	}
	return fmt.Sprintf("%s: buffer exhausted, %d slots available but %d required", E.Phase, E.Slots, E.Required)
}

// Is - Makes errors.Is match any BufferExhausted
func (E BufferExhausted) Is(target error) bool {
	_, ok := target.(BufferExhausted)
	return ok
}

// CorruptPage - Custom error to inform that a stored page does not decode against the page layout
type CorruptPage struct {
	Phase  Phase
	PageID int64
	msg    string
}

// NewCorruptPage - Returns a CorruptPage with a describing message
func NewCorruptPage(phase Phase, pageID int64, msg string) CorruptPage {
	return CorruptPage{Phase: phase, PageID: pageID, msg: msg}
}

// Error - Used to notify that a page is corrupt
func (E CorruptPage) Error() string {
	if E.msg == "" {
		return "corrupt page"
	}
	return fmt.Sprintf("%s: corrupt page %d: %s", E.Phase, E.PageID, E.msg)
}

// Is - Makes errors.Is match any CorruptPage
func (E CorruptPage) Is(target error) bool {
	_, ok := target.(CorruptPage)
	return ok
}

// PageFull - Custom error to inform that an append was attempted on a page at capacity
type PageFull struct {
	msg string
}

// Error - Used to notify that the page is full
func (E PageFull) Error() string {
	if E.msg == "" {
		return "page full"
	}
	return E.msg
}

// PageNotFound - Custom error to inform that a page id is not present in the page store
type PageNotFound struct {
	PageID int64
}

// Error - Used to notify that no page was found
func (E PageNotFound) Error() string {
	return fmt.Sprintf("page %d not found", E.PageID)
}

// Is - Makes errors.Is match any PageNotFound
func (E PageNotFound) Is(target error) bool {
	_, ok := target.(PageNotFound)
	return ok
}
