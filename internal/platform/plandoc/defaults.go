package plandoc

// Default text used when the merge engine creates an initial plan and the
// change-set supplies nothing better. Hoisted here so product copy changes
// do not require touching merge logic.
const (
	DefaultTherapistNote = "Initial assessment completed."
	DefaultClientSummary = "Welcome to your treatment journey."

	// DefaultGoalEmoji decorates client goals whose change-set entry did
	// not pick one.
	DefaultGoalEmoji = "🎯"

	// ClientDescriptionMaxLen caps the patient-facing goal description
	// produced by SimplifyClinicalDescription.
	ClientDescriptionMaxLen = 100
)
