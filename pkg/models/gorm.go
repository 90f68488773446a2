package models

func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&Document{},
		&DocumentVersion{},
		&WorkflowEvent{},
		&DocumentLink{},
		&RetentionPolicy{},
		&NumberSequence{},
		&ApprovalMatrixEntry{},
	}
}
