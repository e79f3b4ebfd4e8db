package config

// DefaultSettings mirrors the shipped chatbot.yaml. The question script below
// drives the pre-interview funnel; deployments override it wholesale via the
// settings file.
func DefaultSettings() Settings {
	return Settings{
		Questions: []QuestionSetting{
			{
				State:        "name",
				Prompt:       "Great! Let's get you started. May I know your full name?",
				Pattern:      `^[A-Za-z][A-Za-z .'-]{1,60}$`,
				ErrorMessage: "Sorry, I couldn't catch your name. Please tell me your full name.",
				Field:        "name",
				Next:         "phone",
			},
			{
				State:        "phone",
				Prompt:       "Thanks! What's the best phone number to reach you? (type 'skip' to share an email instead)",
				Pattern:      `^\+?[0-9][0-9 -]{8,14}$`,
				ErrorMessage: "That doesn't look like a valid phone number. Please enter a 10-digit number, or type 'skip'.",
				Field:        "phone",
				Next:         "email",
				AllowSkip:    true,
				SkipTo:       "email",
			},
			{
				State:        "email",
				Prompt:       "And your email address?",
				Pattern:      `^[^@\s]+@[^@\s]+\.[^@\s]+$`,
				ErrorMessage: "That doesn't look like a valid email address. Please try again.",
				Field:        "email",
				Next:         "employment",
			},
			{
				State:        "employment",
				Prompt:       "Are you currently employed? (yes/no)",
				ErrorMessage: "Please answer with yes or no.",
				Field:        "employment_status",
				NextOn: map[string]string{
					"yes": "experience",
					"no":  "reason",
				},
			},
			{
				State:        "experience",
				Prompt:       "How many years of professional experience do you have?",
				Pattern:      `^[0-9]{1,2}([.,][0-9])?(\s*(years?|yrs?))?$`,
				ErrorMessage: "Please enter your experience in years, e.g. '3' or '2.5 years'.",
				Field:        "experience",
				Next:         "reason",
			},
			{
				State:        "reason",
				Prompt:       "Why do you want to join Inbox Infotech?",
				Pattern:      `^.{10,}$`,
				ErrorMessage: "Could you tell me a bit more? A sentence or two is fine.",
				Field:        "reason",
				Next:         "ready",
			},
			{
				State:        "ready",
				Prompt:       "You're all set! Shall we begin the interview now? Please keep a government ID handy. (yes/no)",
				ErrorMessage: "Please answer with yes or no so I know whether to start the interview.",
				Next:         "document",
			},
			{
				State:   "document",
				Prompt:  "Please upload a clear photo of your government ID (passport, driving licence, Aadhaar or PAN card) using the upload button below.",
				Capture: true,
			},
		},
		Verify: VerifySettings{
			MaxBytes:      10 << 20,
			BlurThreshold: 100,
			SegModes:      []int{3, 6, 11},
			MaxRetries:    3,
			DocumentTypes: map[string][]string{
				"Passport":         {"passport", "republic of india", "type p"},
				"Driving Licence":  {"driving licence", "driving license", "dl no", "transport"},
				"Aadhaar Card":     {"aadhaar", "aadhar", "unique identification", "uidai"},
				"PAN Card":         {"permanent account number", "income tax", "pan"},
				"National ID Card": {"identity card", "national id", "id card"},
			},
		},
		Sections: []SectionSetting{
			{Name: "about", Synonyms: []string{"about", "company", "overview", "who we are"}},
			{Name: "services", Synonyms: []string{"service", "services", "solutions", "what we do"}},
			{Name: "location", Synonyms: []string{"location", "address", "where", "reach us", "visit"}},
			{Name: "careers", Synonyms: []string{"career", "careers", "openings", "jobs", "join us"}},
			{Name: "contact", Synonyms: []string{"contact", "phone", "email", "get in touch"}},
		},
		Intents: IntentSettings{
			JobKeywords: []string{
				"job", "jobs", "opening", "openings", "vacancy", "vacancies",
				"apply", "career", "hiring", "position", "interview", "recruit",
			},
			CompanyKeywords: []string{
				"inbox", "infotech", "career", "job", "location", "apply",
				"interview", "react", "node", "ui", "ux", "service", "services",
				"about", "contact", "company",
			},
		},
	}
}
