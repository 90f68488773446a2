package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestRetentionPolicy_Specificity(t *testing.T) {
	cases := []struct {
		name   string
		policy RetentionPolicy
		want   int
	}{
		{"level+type+category", RetentionPolicy{Level: intPtr(4), DocumentType: strPtr("record"), Category: strPtr("CAL")}, 5},
		{"level+type", RetentionPolicy{Level: intPtr(4), DocumentType: strPtr("record")}, 4},
		{"level+category", RetentionPolicy{Level: intPtr(4), Category: strPtr("CAL")}, 3},
		{"level only", RetentionPolicy{Level: intPtr(4)}, 2},
		{"type+category", RetentionPolicy{DocumentType: strPtr("record"), Category: strPtr("CAL")}, 1},
		{"category only", RetentionPolicy{Category: strPtr("CAL")}, 0},
		{"wildcard", RetentionPolicy{}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.policy.Specificity())
		})
	}
}

func TestRetentionPolicy_Matches(t *testing.T) {
	doc := &Document{Level: 4, DocumentType: "record", Category: "CAL"}

	t.Run("null fields are wildcards", func(t *testing.T) {
		assert.True(t, (&RetentionPolicy{}).Matches(doc))
		assert.True(t, (&RetentionPolicy{Level: intPtr(4)}).Matches(doc))
	})

	t.Run("set fields must equal", func(t *testing.T) {
		assert.False(t, (&RetentionPolicy{Level: intPtr(3)}).Matches(doc))
		assert.False(t, (&RetentionPolicy{Category: strPtr("TRN")}).Matches(doc))
		assert.True(t, (&RetentionPolicy{
			Level:        intPtr(4),
			DocumentType: strPtr("record"),
			Category:     strPtr("CAL"),
		}).Matches(doc))
	})
}

func TestRetentionPolicy_Create(t *testing.T) {
	db := testDB(t)

	t.Run("rejects missing name", func(t *testing.T) {
		p := RetentionPolicy{RetentionYears: 3}
		require.Error(t, p.Create(db))
	})

	t.Run("rejects months out of range", func(t *testing.T) {
		p := RetentionPolicy{PolicyName: "bad-months", RetentionMonths: 12}
		require.Error(t, p.Create(db))
	})

	t.Run("creates and lists in name order", func(t *testing.T) {
		for _, name := range []string{"zeta", "alpha"} {
			p := RetentionPolicy{PolicyName: name, RetentionYears: 1}
			require.NoError(t, p.Create(db))
		}
		policies, err := ListRetentionPolicies(db)
		require.NoError(t, err)
		require.Len(t, policies, 2)
		assert.Equal(t, "alpha", policies[0].PolicyName)
		assert.Equal(t, "zeta", policies[1].PolicyName)
	})
}

func TestLookupApprovalMatrix(t *testing.T) {
	db := testDB(t)

	entries := []ApprovalMatrixEntry{
		{ApproverID: "global-approver"},
		{Level: intPtr(3), CheckerID: "level3-checker"},
		{Level: intPtr(3), Category: strPtr("PROC"), DoerID: "proc-doer", ApproverID: "proc-approver"},
	}
	for i := range entries {
		require.NoError(t, entries[i].Create(db))
	}

	t.Run("most specific entry wins", func(t *testing.T) {
		got, err := LookupApprovalMatrix(db, &Document{Level: 3, Category: "PROC"})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "proc-approver", got.ApproverID)
	})

	t.Run("falls back to level entry", func(t *testing.T) {
		got, err := LookupApprovalMatrix(db, &Document{Level: 3, Category: "WI"})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "level3-checker", got.CheckerID)
	})

	t.Run("falls back to global wildcard", func(t *testing.T) {
		got, err := LookupApprovalMatrix(db, &Document{Level: 1, Category: "QM"})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "global-approver", got.ApproverID)
	})

	t.Run("rejects entry with no assignments", func(t *testing.T) {
		empty := ApprovalMatrixEntry{Level: intPtr(2)}
		require.Error(t, empty.Create(db))
	})
}
