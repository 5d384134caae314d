package parser

import "strings"

// columnAlias pairs a normalized header label with its canonical field.
// Aliases are checked in slice order so matching stays deterministic:
// exact matches first, then substring containment in either direction
// (header labels often carry parenthesized remarks, e.g.
// "CATATAN (TERMANFAATKAN/TERLANTAR)").
type columnAlias struct {
	label string
	field Field
}

// columnAliases is the closed vocabulary of recognized header labels.
// Extending support for a new label means adding a table entry, nothing
// else. Longer, more specific labels come before their shorter variants
// so containment checks cannot shadow them.
var columnAliases = []columnAlias{
	{"jenis barang / nama barang", FieldName},
	{"jenis barang", FieldName},
	{"nama barang", FieldName},
	{"nama aset", FieldName},
	{"penggunaan", FieldName},

	{"kecamatan", FieldDistrict},

	{"luas (m2)", FieldArea},
	{"luas m2", FieldArea},
	{"luas", FieldArea},

	{"satuan kerja", FieldWorkUnit},

	{"status tanah", FieldLandStatus},

	{"catatan (termanfaatkan/terlantar)", FieldNote},
	{"catatan", FieldNote},

	{"k3 (milik warga/ada klaim, tkd, dll)", FieldClaim},
	{"k3", FieldClaim},

	{"pemetaan aset tanah", FieldMapStatus},
	{"pemetaan", FieldMapStatus},

	{"nilai / harga", FieldValue},
	{"nilai/harga", FieldValue},
	{"nilai", FieldValue},
	{"harga", FieldValue},

	{"kode aset", FieldAssetCode},

	{"tahun", FieldYear},
}

// nameHeaderLabels identify the header row itself. A row containing any of
// these (normalized, substring match) defines column semantics for
// everything beneath it.
var nameHeaderLabels = []string{"jenis barang", "nama barang"}

// summaryKeywords mark subtotal/total rows that must not become records.
var summaryKeywords = []string{"JUMLAH", "TOTAL", "SUB TOTAL", "GRAND TOTAL", "REKAPITULASI"}

// normalizeLabel lowercases a header cell and collapses internal whitespace
// so "Luas   (M2)" and "luas (m2)" compare equal.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// matchAlias resolves a raw header cell to a canonical field.
// Exact normalized match wins; otherwise the first alias contained in the
// label (or containing it) wins. Returns false for unrecognized labels,
// which are ignored by the mapper.
func matchAlias(rawLabel string) (Field, bool) {
	label := normalizeLabel(rawLabel)
	if label == "" {
		return "", false
	}

	for _, a := range columnAliases {
		if label == a.label {
			return a.field, true
		}
	}

	for _, a := range columnAliases {
		if strings.Contains(label, a.label) || strings.Contains(a.label, label) {
			return a.field, true
		}
	}

	return "", false
}
