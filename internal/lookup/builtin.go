package lookup

// Builtin seed lists. They are deliberately small: production deployments
// load full lists from a term directory (see Load), the seeds keep the
// detectors functional out of the box and in tests.

var builtinLists = lists{
	Places: []string{
		"Amsterdam", "Rotterdam", "Den Haag", "Utrecht", "Eindhoven",
		"Groningen", "Tilburg", "Almere", "Breda", "Nijmegen",
		"Zaltbommel", "Bunnik", "Halfweg", "Súdwest-Fryslân",
		"Alphen aan den Rijn", "Alphen",
		"Oude Turfmarkt", "Turfmarkt", "Dorpstraat", "Amsterdamsestraatweg",
	},
	Hospitals: []string{
		"UMCU", "UMCG", "AMC", "VUmc", "LUMC", "Erasmus MC", "Radboudumc",
		"Maastricht UMC", "Antoni van Leeuwenhoek", "OLVG",
	},
	CareInstitutes: []string{
		"GGZinGeest", "Reade", "Altrecht", "Parnassia", "Pro Persona",
		"Rijn apotheek", "Lentis", "Dimence",
	},
	FirstNames: []string{
		"Jan", "Peter", "Fien", "Maria", "Johannes", "Anna", "Pieter",
		"Willem", "Hendrik", "Cornelia", "Sophie", "Thomas", "Emma",
		"Daan", "Lucas", "Sanne",
	},
	Surnames: []string{
		"Jansen", "Visser", "Bakker", "Smit", "Meijer", "Mulder",
		"Bos", "Vos", "Dekker", "Dijkstra", "Heide", "Jagers", "Akkerhuis",
	},
	Interfixes: []string{
		"van", "de", "der", "den", "het", "ten", "ter", "op", "aan",
		"bij", "in", "onder", "over", "'t", "v.d.",
	},
}

// Builtin returns a Store backed by the built-in seed lists.
func Builtin() *Store {
	return builtinLists.build()
}
