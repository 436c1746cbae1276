package pipeline

// Result is the outcome of one pipeline invocation.
type Result struct {
	Artifact Artifact
	Cleanup  CleanupStats
	Roles    RoleMap
}

// Run executes merge, role assignment, cleanup and narrative rendering
// over an ingested turn sequence. A cleanup error fails the invocation
// without touching the sealed input turns.
func Run(turns []Turn, profileID string) (Result, error) {
	merged := MergeTurns(turns)
	roles := AssignRoles(merged)

	cleaned, stats, err := CleanupTurns(merged, profileID)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Artifact: Render(cleaned, roles),
		Cleanup:  stats,
		Roles:    roles,
	}, nil
}
