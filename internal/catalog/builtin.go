package catalog

import "fmt"

func promptID(id uint) string {
	return fmt.Sprintf("prompt-%d", id)
}

var builtinPrompts = []string{
	"The sound your alarm makes on the morning of your own wedding",
	"What the dentist hears when the anesthesia wears off early",
	"The last transmission from a doomed submarine",
	"Your neighbor's band rehearsing at 3am",
	"The noise the office printer makes right before it dies",
	"What a cat thinks karaoke sounds like",
	"The soundtrack of stepping on a LEGO in the dark",
	"A haunted vending machine dispensing a snack",
	"The ringtone of someone who peaked in high school",
	"What plants hear when you forget to water them",
	"The inside of a toddler's birthday party, compressed to five seconds",
	"The sound of your diet officially ending",
	"A GPS having a nervous breakdown",
	"What the gym sounds like on January 2nd",
	"The mating call of a malfunctioning robot",
	"Your stomach during a silent meditation retreat",
	"The soundtrack of realizing you replied-all",
	"A microwave achieving sentience",
	"The noise a Monday morning makes",
	"What your pet does the second you leave the house",
	"The sound of wifi going down during the season finale",
	"An elevator full of mimes in an emergency",
	"The world's worst doorbell",
	"What it sounds like inside a snow globe",
}

var builtinSounds = []string{
	"airhorn",
	"sad-trombone",
	"dial-up-modem",
	"rubber-duck",
	"evil-laugh",
	"kazoo-solo",
	"glass-shatter",
	"cat-scream",
	"baby-giggle",
	"foghorn",
	"slide-whistle",
	"heavy-breathing",
	"record-scratch",
	"goat-yell",
	"typewriter",
	"thunder-crack",
	"squeaky-toy",
	"drum-roll",
	"cash-register",
	"church-bell",
	"cartoon-boing",
	"vuvuzela",
	"crickets",
	"power-down",
	"opera-note",
	"chainsaw",
	"bubble-pop",
	"horse-whinny",
	"laser-blast",
	"toilet-flush",
	"applause",
	"wilhelm-scream",
}
