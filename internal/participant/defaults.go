package participant

// DefaultProfiles returns the built-in eight-participant roster used when no
// roster file is configured. The mix covers the neurotypes and availability
// bands the assignment engine distinguishes, so the tool is usable out of the
// box and demos exercise every scoring branch.
//
// Each call returns a fresh copy; callers may mutate the result freely.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			ID:           "p-001",
			Name:         "Alex M.",
			Strengths:    []string{"number_sense", "written_communication"},
			SupportNeeds: []string{},
			Neurotype:    NeurotypeTypical,
			Availability: 90,
			RoleHistory:  []string{"information_analyst"},
		},
		{
			ID:           "p-002",
			Name:         "Maria L.",
			Strengths:    []string{"written_communication", "grammar"},
			SupportNeeds: []string{},
			Neurotype:    NeurotypeTypical,
			Availability: 95,
			RoleHistory:  []string{"communicator"},
		},
		{
			ID:           "p-003",
			Name:         "Elena R.",
			Strengths:    []string{"number_sense", "analytical_thinking"},
			SupportNeeds: []string{"structured_routines", "predictable_environment", "visual_supports"},
			Neurotype:    NeurotypeASD,
			Availability: 70,
			RoleHistory:  []string{"visual_designer"},
		},
		{
			ID:           "p-004",
			Name:         "Luis T.",
			Strengths:    []string{"experimentation"},
			SupportNeeds: []string{"clear_instructions", "frequent_breaks", "hands_on_activities"},
			Neurotype:    NeurotypeADHD,
			Availability: 65,
			RoleHistory:  []string{"experimenter"},
		},
		{
			ID:           "p-005",
			Name:         "Ana V.",
			Strengths:    []string{"number_sense", "arithmetic_operations", "written_communication", "research"},
			SupportNeeds: []string{"additional_challenges", "autonomous_projects"},
			Neurotype:    NeurotypeGifted,
			Availability: 85,
			RoleHistory:  []string{"science_researcher", "academic_mentor"},
		},
		{
			ID:           "p-006",
			Name:         "Sara M.",
			Strengths:    []string{"collaboration", "written_communication"},
			SupportNeeds: []string{"verbal_explanations"},
			Neurotype:    NeurotypeTypical,
			Availability: 90,
			RoleHistory:  []string{"group_facilitator"},
		},
		{
			ID:           "p-007",
			Name:         "Emma K.",
			Strengths:    []string{"analytical_thinking", "written_communication"},
			SupportNeeds: []string{"visual_supports"},
			Neurotype:    NeurotypeTypical,
			Availability: 90,
			RoleHistory:  []string{"visual_designer", "information_analyst"},
		},
		{
			ID:           "p-008",
			Name:         "Hugo P.",
			Strengths:    []string{"experimentation", "research"},
			SupportNeeds: []string{"visual_supports"},
			Neurotype:    NeurotypeTypical,
			Availability: 85,
			RoleHistory:  []string{"experimenter"},
		},
	}
}
