// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package compat

// Sync reconciles the category fields of an audio record.
//
// When a relational reference resolves, it wins: the selection is
// repaired and the subject regenerated from it. Otherwise the selection is
// inferred from the subject; the subject is rewritten to the matched name,
// or kept as written when nothing matches. Ids that do not resolve are
// treated as absent. Sync is idempotent.
//
// Repairs applied to the selection:
//   - a categoryId naming a secondary becomes the subcategoryId, with its
//     parent as categoryId, when no subcategory is set
//   - a subcategoryId naming a primary becomes the categoryId when the
//     categoryId is empty or the same
//   - a subcategory whose parent differs from categoryId moves categoryId
//     to the real parent
func (a *Adapter) Sync(f Fields) Fields {
	sel := a.resolve(f.Selection)
	if !sel.IsEmpty() {
		return Fields{Subject: a.SubjectFromSelection(sel), Selection: sel}
	}
	if inferred := a.SelectionFromSubject(f.Subject); !inferred.IsEmpty() {
		return Fields{Subject: a.SubjectFromSelection(inferred), Selection: inferred}
	}
	return Fields{Subject: f.Subject}
}

// resolve drops unknown ids and fixes level and parent mismatches.
func (a *Adapter) resolve(sel Selection) Selection {
	cat, catOK := a.byID[sel.CategoryID]
	sub, subOK := a.byID[sel.SubcategoryID]
	if sel.CategoryID == "" {
		catOK = false
	}
	if sel.SubcategoryID == "" {
		subOK = false
	}

	if subOK && sub.ParentID == nil {
		// Subcategory slot holds a primary.
		if !catOK || cat.ID == sub.ID {
			return Selection{CategoryID: sub.ID}
		}
		subOK = false
	}
	if subOK {
		return Selection{CategoryID: *sub.ParentID, SubcategoryID: sub.ID}
	}
	if catOK {
		if cat.ParentID != nil {
			return Selection{CategoryID: *cat.ParentID, SubcategoryID: cat.ID}
		}
		return Selection{CategoryID: cat.ID}
	}
	return Selection{}
}
