package links

import (
	"github.com/hashicorp-forge/curator/pkg/models"
)

// reverseTypes maps each link type to the type of its mirror edge. The table
// is involutive: reverse(reverse(t)) == t. "related" is its own reverse.
var reverseTypes = map[models.LinkType]models.LinkType{
	models.LinkParentChild:   models.LinkChildParent,
	models.LinkChildParent:   models.LinkParentChild,
	models.LinkReference:     models.LinkReferencedBy,
	models.LinkReferencedBy:  models.LinkReference,
	models.LinkSupersedes:    models.LinkSupersededBy,
	models.LinkSupersededBy:  models.LinkSupersedes,
	models.LinkImplements:    models.LinkImplementedBy,
	models.LinkImplementedBy: models.LinkImplements,
	models.LinkRelated:       models.LinkRelated,
}

// ReverseType returns the mirror type for a link type. The second return is
// false for unknown types.
func ReverseType(t models.LinkType) (models.LinkType, bool) {
	r, ok := reverseTypes[t]
	return r, ok
}
