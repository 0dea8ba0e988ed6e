package profanity

// englishTerms covers English profanity and the spellings people use to dodge filters.
// Entries are stored already folded and stripped of non-word characters.
var englishTerms = []string{
	"fuck", "fucks", "fucker", "fuckers", "fucking", "fucked", "fuckin", "motherfucker", "motherfucking",
	"shit", "shits", "shitty", "shithead", "bullshit", "horseshit",
	"bitch", "bitches", "bitching", "bastard", "bastards",
	"ass", "asses", "asshole", "assholes", "jackass", "dumbass",
	"dick", "dicks", "dickhead", "cock", "cocks", "cocksucker", "prick", "pricks",
	"cunt", "cunts", "twat", "wanker", "wank",
	"piss", "pissed", "crap", "crappy", "damn", "goddamn",
	"slut", "sluts", "whore", "whores", "douche", "douchebag",
	"retard", "retarded",
	"wtf", "stfu", "fml",

	// obfuscations
	"fck", "fcking", "fuk", "fuking", "fuq", "phuck", "phuk", "f_ck", "fu_k", "fvck",
	"sh1t", "shyt", "shiit", "sht",
	"b1tch", "biatch", "bytch", "btch",
	"a55", "a55hole", "azz", "azzhole", "assh0le",
	"d1ck", "dik", "c0ck", "kock",
	"cnt", "kunt", "wh0re", "sl0t", "pr1ck",
}

// hindiTerms covers Hindi profanity in romanized (Hinglish) and Devanagari spellings.
var hindiTerms = []string{
	"chutiya", "chutiye", "chootiya", "chutia",
	"madarchod", "maderchod", "madarchodd",
	"behenchod", "bhenchod", "benchod", "behenchodd",
	"bhosdike", "bhosdi", "bhosda", "bhosadike",
	"gandu", "gaandu", "gaand", "gand",
	"harami", "haramkhor", "haramzada", "haramzadi",
	"kamina", "kameena", "kamine", "kameene",
	"kutta", "kutte", "kutiya", "kuttiya",
	"lund", "lauda", "lavda", "loda", "lawda",
	"randi", "randwa", "raand",
	"jhaat", "jhatu", "tatti", "chod", "chodu", "chodna",
	"suar", "suwar",

	"चूतिया", "चुतिया", "मादरचोद", "भेनचोद", "बहनचोद", "भोसडीके", "गांडू", "गांड",
	"हरामी", "हरामज़ादा", "कमीना", "कुत्ता", "कुत्ते", "लौड़ा", "रंडी", "झाटू",
}
