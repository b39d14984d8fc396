package triage

// greetingResponses is the fixed pool a greeting reply is drawn from,
// uniformly at random.
var greetingResponses = []string{
	"Hello! I'm here to provide mental health support. How can I help you today?",
	"Hi there! I'm a mental health assistant. Feel free to share what's on your mind.",
	"Welcome! I'm here to listen and offer support. What would you like to talk about?",
	"Good day! Remember you're not alone. How can I assist you?",
	"Hello! Let's work through this together. What's concerning you?",
	"Hi! I'm here to help with mental wellness. What would you like to discuss?",
}

const crisisNotice = "I'm deeply concerned. Please contact:"

// crisisResources is the static resource list attached to every crisis
// reply. The crisis path never calls the generation service.
var crisisResources = []string{
	"National Crisis Hotline: 988",
	"Text HOME to 741741",
	"Emergency Services: 911",
}
