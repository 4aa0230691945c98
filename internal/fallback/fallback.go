// Package fallback holds canned answers for the topics the assistant can cover
// without calling a language model.
package fallback

import (
	"strings"

	"github.com/RichardoC/drivewise/internal/models"
)

type rule struct {
	topic   string
	matches func(q string) bool
	answer  models.Answer
}

// containsAny reports whether q contains at least one of the keywords.
func containsAny(q string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// rules are evaluated top to bottom against the lowercased question.
var rules = []rule{
	{
		topic: "blood alcohol",
		matches: func(q string) bool {
			return containsAny(q, "blood alcohol", "drinking and driving", "dui", "alcohol")
		},
		answer: models.Answer{
			Answer:   "In most states in the US, the legal blood alcohol concentration (BAC) limit for drivers is 0.08%. However, this varies by country and there are often stricter limits for commercial drivers (typically 0.04%) and zero tolerance policies for drivers under 21 years old. Always check your local regulations as they may differ.",
			Citation: "National Highway Traffic Safety Administration Guidelines",
			Tags:     []string{"DUI", "blood alcohol", "driving safety"},
		},
	},
	{
		topic: "school bus",
		matches: func(q string) bool {
			return strings.Contains(q, "school bus")
		},
		answer: models.Answer{
			Answer:   "When a school bus stops with its red lights flashing and stop arm extended, vehicles must stop in both directions (except on divided highways with separate roadways). Remain stopped until the bus resumes motion, the bus driver signals it's okay to proceed, or the red lights stop flashing. Failing to stop for a school bus can result in significant penalties including fines, license suspension, and points on your driving record.",
			Citation: "Federal Highway Administration Guidelines on School Bus Safety",
			Tags:     []string{"school bus", "traffic rules", "safety"},
		},
	},
	{
		topic: "pedestrian",
		matches: func(q string) bool {
			return containsAny(q, "pedestrian", "yield to pedestrian")
		},
		answer: models.Answer{
			Answer:   "Drivers must yield to pedestrians in the following situations: 1) At marked or unmarked crosswalks, 2) When pedestrians are already in any portion of the roadway, 3) When making turns at intersections while pedestrians are crossing with the signal, 4) When entering a road from a driveway, alley, or private road, 5) At all school crossings with children present, 6) When encountering visually impaired pedestrians using a white cane or guide dog. Always reduce speed and be prepared to stop when approaching pedestrians.",
			Citation: "Uniform Vehicle Code, Section 11-502",
			Tags:     []string{"pedestrians", "right of way", "crosswalks", "traffic safety"},
		},
	},
	{
		topic: "roundabout",
		matches: func(q string) bool {
			return strings.Contains(q, "roundabout")
		},
		answer: models.Answer{
			Answer:   "When using a roundabout: 1) Slow down as you approach. 2) Yield to vehicles already in the roundabout and to pedestrians. 3) Enter when there is a safe gap in traffic. 4) Drive in a counterclockwise direction. 5) Use your right turn signal when preparing to exit. 6) Yield to pedestrians when exiting. If an emergency vehicle approaches, exit the roundabout first and then pull over to let it pass.",
			Citation: "Federal Highway Administration, Roundabouts: An Informational Guide",
			Tags:     []string{"roundabout", "traffic circle", "right of way", "traffic flow"},
		},
	},
	{
		topic: "HOV lane",
		matches: func(q string) bool {
			return containsAny(q, "hov", "carpool lane", "diamond lane")
		},
		answer: models.Answer{
			Answer:   "HOV (High Occupancy Vehicle) lanes, also known as carpool or diamond lanes, typically require a minimum of 2 or 3 occupants per vehicle, depending on local regulations. Permitted users usually include: carpools, vanpools, buses, motorcycles, and in some areas, clean-air vehicles with special permits. Operating hours vary - some are only during peak commute times while others are 24/7. Crossing solid double lines to enter or exit HOV lanes is generally prohibited. Penalties for improper use can include significant fines that increase with multiple violations.",
			Citation: "Federal Highway Administration, HOV Lane Operations Guidelines",
			Tags:     []string{"HOV", "carpool", "traffic regulations", "commuting"},
		},
	},
	{
		topic: "helmet law in India",
		matches: func(q string) bool {
			return containsAny(q, "helmet", "without helmet") && strings.Contains(q, "india")
		},
		answer: models.Answer{
			Answer:   "In India, riding a two-wheeler without a helmet is an offense under the Motor Vehicles Act. As per the amended Motor Vehicles Act of 2019, the fine for riding without a helmet is Rs. 1,000 (previously Rs. 100) and can also lead to disqualification of license for 3 months. The exact amount may vary slightly from state to state as some states have modified the penalties. All riders, including pillion riders, are required to wear helmets that meet the Bureau of Indian Standards (BIS) certification.",
			Citation: "Motor Vehicles (Amendment) Act, 2019, Government of India",
			Tags:     []string{"helmet law", "india", "traffic fine", "motorcycle safety"},
		},
	},
	{
		topic: "motorcycle accident",
		matches: func(q string) bool {
			return strings.Contains(q, "accident") && containsAny(q, "motorcycle", "bike")
		},
		answer: models.Answer{
			Answer:   "If you've been in a motorcycle accident: 1) Ensure your safety first by moving to a safe location if possible. 2) Call emergency services (police and ambulance) immediately. 3) Exchange information with all parties involved, including contact details, insurance information, and vehicle details. 4) Document the scene with photos and gather witness information if available. 5) Seek medical attention even if injuries seem minor. 6) Report the accident to your insurance company promptly. 7) Consult with a legal professional if there are disputes about liability or significant injuries. Do not admit fault at the scene, as determining liability requires a full investigation.",
			Citation: "National Highway Traffic Safety Administration Motorcycle Safety Guidelines",
			Tags:     []string{"motorcycle accident", "emergency procedures", "traffic incident", "insurance claims"},
		},
	},
	{
		topic: "police bribery",
		matches: func(q string) bool {
			return containsAny(q, "police", "officer", "cop") && containsAny(q, "bribe", "bribery", "corrupt")
		},
		answer: models.Answer{
			Answer:   "If a traffic officer is requesting a bribe: 1) Remain calm and polite. 2) Ask for a proper citation or ticket for any alleged violation. 3) Request to see the officer's identification and make note of their name and badge number. 4) Inform them you wish to handle the matter through official channels. 5) If possible, record the interaction or ensure witnesses are present. 6) Report the incident to the police department's internal affairs division, local anti-corruption bureau, or equivalent oversight agency. Many countries have dedicated hotlines for reporting police corruption. Never offer or pay bribes as this is illegal and perpetuates corruption. Instead, follow legal procedures to contest any citation if you believe it was issued improperly.",
			Citation: "Transparency International Anti-Corruption Guidelines",
			Tags:     []string{"police corruption", "traffic enforcement", "legal rights", "reporting procedure"},
		},
	},
	{
		topic: "rights when stopped",
		matches: func(q string) bool {
			return strings.Contains(q, "rights") && containsAny(q, "pulled over", "stopped by police")
		},
		answer: models.Answer{
			Answer:   "When pulled over by police, you generally have these rights: 1) The right to remain silent beyond providing license, registration, and insurance when requested. 2) The right to refuse searches of your vehicle (though police may have other grounds to search). 3) The right to record the interaction (but inform the officer you're recording). 4) The right to ask if you're free to leave. 5) The right to sign a ticket without admitting guilt. You should: remain calm, keep hands visible, follow instructions, and be polite but firm about your rights. Avoid sudden movements, arguing, or fleeing, which can escalate the situation. Remember that rights vary by country and jurisdiction, so familiarize yourself with local laws.",
			Citation: "American Civil Liberties Union (ACLU) Know Your Rights Guidelines",
			Tags:     []string{"legal rights", "traffic stop", "police interaction", "driver responsibilities"},
		},
	},
	{
		topic: "insurance claim",
		matches: func(q string) bool {
			return strings.Contains(q, "insurance") && strings.Contains(q, "accident")
		},
		answer: models.Answer{
			Answer:   "After a traffic accident, follow these steps for insurance claims: 1) Report the accident to your insurance company immediately, regardless of fault. 2) Provide all requested documentation, including police reports, photos of damages, medical reports, and repair estimates. 3) Be truthful and consistent in all statements. 4) Keep detailed records of all communication with insurance companies. 5) Understand your policy coverage before accepting settlements. 6) If the other party was at fault, their insurance should cover your damages, but your insurance company can help with this process. 7) Consider consulting an attorney for serious accidents or if the insurance company denies your claim. The claim process typically takes 2-6 weeks for property damage and potentially longer for injury claims.",
			Citation: "Insurance Information Institute Guidelines",
			Tags:     []string{"insurance claims", "accident procedure", "vehicle damage", "policyholder rights"},
		},
	},
}

// Hit is a matched rule: the topic it covers and its canned answer.
type Hit struct {
	Topic  string
	Answer models.Answer
}

// Match returns the first rule the question satisfies. The returned answer owns
// its tag slice.
func Match(question string) (Hit, bool) {
	q := strings.ToLower(question)
	for _, r := range rules {
		if r.matches(q) {
			a := r.answer
			a.Tags = append([]string(nil), r.answer.Tags...)
			return Hit{Topic: r.topic, Answer: a}, true
		}
	}
	return Hit{}, false
}

// KnownTopics is the topic list quoted to users when nothing else can answer.
const KnownTopics = "school buses, pedestrian right of way, roundabouts, HOV lanes, blood alcohol limits, helmet laws in India, motorcycle accidents, traffic police interactions, your rights when pulled over, or insurance claims after an accident"

// Unknown is returned when no rule matches and no model is configured.
func Unknown() models.Answer {
	return models.Answer{
		Answer:   "I don't have specific information about that topic yet. Please try asking about: " + KnownTopics + ".",
		Citation: "DriveWise AI Knowledge Base",
		Tags:     []string{"information", "driving rules", "traffic regulations"},
	}
}

// SuggestedQuestions are shown in the UI to get a conversation started.
func SuggestedQuestions() []string {
	return []string{
		"What are the rules for passing a school bus?",
		"When must I yield to pedestrians?",
		"What are the rules for using a roundabout?",
		"When can I use the HOV lane?",
		"What are the blood alcohol limits for drivers?",
	}
}
