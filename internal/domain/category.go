package domain

// Category classifies a transaction. The values are the Spanish display
// strings because that is what the stored rows carry; renaming them would
// orphan existing data.
type Category string

const (
	// Caja (daily cash register)
	VentaDiaria   Category = "Venta Diaria"
	OtrosIngresos Category = "Otros Ingresos"
	GastoCaja     Category = "Gasto de Caja"

	// Personal
	NominaFija      Category = "Nómina Fija"
	PersonalHoras   Category = "Personal por Horas"
	SeguridadSocial Category = "Seguridad Social"

	// Proveedores
	MateriasPrimas    Category = "Materias Primas"
	ProveedoresVarios Category = "Proveedores Varios"
	Mercaderia        Category = "Mercadería"

	// Estructura
	Alquiler       Category = "Alquiler"
	Suministros    Category = "Suministros (Luz/Agua/Net)"
	Marketing      Category = "Marketing"
	Impuestos      Category = "Impuestos"
	Mantenimiento  Category = "Mantenimiento"
	Software       Category = "Software/Suscripciones"
	Amortizaciones Category = "Amortizaciones"
	Leasing        Category = "Leasings"
	Comisiones     Category = "Comisiones"
	Profesionales  Category = "Profesionales"

	// DesglosePago records how a session's income was collected
	// (cash/card/transfer). Informational only: it never counts toward
	// financial totals.
	DesglosePago Category = "Desglose Pago (Info)"

	Otros Category = "Otros"
)

// Section is a dashboard grouping of categories.
type Section string

const (
	SectionCaja        Section = "caja"
	SectionPersonal    Section = "personal"
	SectionProveedores Section = "proveedores"
	SectionEstructura  Section = "estructura"
)

// SectionCategories maps each dashboard section to its category set.
var SectionCategories = map[Section][]Category{
	SectionCaja:        {VentaDiaria, OtrosIngresos, GastoCaja},
	SectionPersonal:    {NominaFija, PersonalHoras, SeguridadSocial},
	SectionProveedores: {MateriasPrimas, Mercaderia, ProveedoresVarios},
	SectionEstructura: {
		Alquiler,
		Suministros,
		Marketing,
		Impuestos,
		Mantenimiento,
		Software,
		Amortizaciones,
		Leasing,
		Comisiones,
		Profesionales,
	},
}

// ExcludedFromTotals reports whether the category is a technical marker that
// must never count toward financial totals. Kept as a capability of the
// category value so aggregation code does not scatter string comparisons.
func (c Category) ExcludedFromTotals() bool {
	return c == DesglosePago
}

// InSection reports whether the category belongs to the given section.
func (c Category) InSection(s Section) bool {
	for _, sc := range SectionCategories[s] {
		if c == sc {
			return true
		}
	}
	return false
}

// AllCategories lists every category selectable in manual entry forms.
// DesglosePago is deliberately absent: it is written only by the session
// payment-breakdown flow.
func AllCategories() []Category {
	out := make([]Category, 0, 20)
	out = append(out, SectionCategories[SectionCaja]...)
	out = append(out, SectionCategories[SectionPersonal]...)
	out = append(out, SectionCategories[SectionProveedores]...)
	out = append(out, SectionCategories[SectionEstructura]...)
	out = append(out, Otros)
	return out
}
