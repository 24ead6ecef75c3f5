package extract

// Raw FCCdb column headers, verbatim including embedded newlines.
const (
	ColCASValidity  = "CAS \nvalidity"
	ColCASNumber    = "CAS \nnumber or CFSAN id"
	ColHazardAuth   = "Priority hazardous substance prioritized based on selected authoritative sources? + why"
	ColConcernNon   = "Substance of potential concern identified based on selected non-authoritative sources? + why"
	ColRefCount     = "N sources \nthat mention this chemical"
	ColUsageCount   = "N global \nFCM inventories where included"
	ColECHAHH       = "ECHA \nC&L: \nSUM HH"
	ColECHAENVH     = "ECHA \nC&L: SUM ENVH"
	ColECHASignal   = "ECHA \nC&L: Signal Word"
	ColECHAClass    = "ECHA \nC&L: \nClassification"
	ColGHSJHH       = "GHS-J: \nSUM HH"
	ColGHSJENVH     = "GHS-J: \nSUM ENVH"
	ColGHSJSignal   = "GHS-J: \nSignal Word"
	ColGHSJClass    = "GHS-J: \nClassification"
	ColDanishClass  = "Danish \nEPA's predicted GHS-aligned classifications for HH or ENVH"
	ColDanishHH     = "predicted priority HH: potential CMR substance based on the Danish EPA's predicted GHS-aligned classifications? + which classifications decisive"
	ColDanishENVH   = "predicted priority ENVH: Class 1 Aq. Chronic with or without Aq. Acute 1 toxicant based on the Danish EPA's predicted GHS-aligned classifications? + which classifications decisive"
	ColCPPdb        = "included in the CPPdb?\n + List A or B status and if considered fc (assessed for ListA only)"
	ColTonnage      = "ECHA \nregistered tonnage band"
	ColFoodLists    = "Specific \nFCM lists where included"
	materialPattern = `^Global \nInventory: (.+)$`
	sourcePattern   = `^S\d+$`
)

// Clean field names.
const (
	FieldCASValidity     = "CAS validity"
	FieldCASNumber       = "CAS/CFSAN number"
	FieldHazardAuth      = "Hazardous auth"
	FieldConcernNonAuth  = "Potential concern non-auth"
	FieldRefCount        = "ref_count"
	FieldECHAHH          = "ECHA: HH"
	FieldECHAENVH        = "ECHA: ENVH"
	FieldECHASignal      = "ECHA: Signal Word"
	FieldECHAClass       = "ECHA: Classification"
	FieldGHSJHH          = "GHS-J: HH"
	FieldGHSJENVH        = "GHS-J: ENVH"
	FieldGHSJSignal      = "GHS-J: Signal Word"
	FieldGHSJClass       = "GHS-J: Classification"
	FieldGHSAlignedClass = "GHS-aligned classifications"
	FieldGHSAlignedHH    = "GHS-aligned HH priority"
	FieldGHSAlignedENVH  = "GHS-aligned ENVH priority"
	FieldUsageCount      = "Usage count"
	FieldSourceCount     = "Source count"
	FieldTonnageMin      = "Tonnage min"
	FieldTonnageMax      = "Tonnage max"
	FieldCPPdbFC         = "CPPdb fc"
	FieldFoodContact     = "food_contact"
)

// Groups tag the pattern-discovered clean fields so reports can find them
// after a reload.
const (
	GroupMaterial = "material"
	GroupSource   = "source"
)
