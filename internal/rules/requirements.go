package rules

// Course codes look like "INFO 370", "BIOL-3001" or "CMSC245".
const courseCodeExpr = `\b[A-Z]{2,4}\s*-?\s*\d{3,4}\b`

var required = []Entry{
	{ID: "course_info", Rule: &Composite{
		Name: "Course prefix and number, section number, and title",
		SubItems: []SubItem{
			{
				ID: "course_code", Name: "Course prefix and number", Weight: 0.4,
				Flat: &Flat{
					PrimaryPatterns: Patterns(`(?-i)` + courseCodeExpr),
					ContextKeywords: Keywords("course", "syllabus"),
					MinMatches:      1,
				},
			},
			{
				ID: "section", Name: "Section number", Weight: 0.3,
				Flat: &Flat{
					PrimaryPatterns: Patterns(
						`section\s*[:#]?\s*\d{1,3}[a-z]?\b`,
						`\bsec\.?\s*[:#]?\s*\d{3}\b`,
						courseCodeExpr+`\s*[-.]\s*\d{3}\b`,
					),
					ContextKeywords: Keywords("section", "crn"),
					MinMatches:      1,
				},
			},
			{
				ID: "course_title", Name: "Course title", Weight: 0.3,
				UseCatalogTitle: true,
				Flat: &Flat{
					PrimaryPatterns: Patterns(
						`course\s*(title|name)\s*:`,
						courseCodeExpr+`\s*[:\-–]\s*[a-z][a-z&,]+(\s+[a-z&,]+)*`,
					),
					ContextKeywords: Keywords("title", "introduction", "principles"),
					MinMatches:      1,
				},
			},
		},
	}},

	{ID: "semester_credits", Rule: &Composite{
		Name: "Semester term and credit hours",
		SubItems: []SubItem{
			{
				ID: "semester", Name: "Semester term", Weight: 0.5,
				Flat: &Flat{
					PrimaryPatterns: Patterns(
						`\b(fall|spring|summer|winter)\s*(semester|term|session)?\s*,?\s*(20)?\d{2}\b`,
						`\b(semester|term)\s*:\s*(fall|spring|summer|winter)`,
					),
					ContextKeywords: Keywords("semester", "term", "session"),
					MinMatches:      1,
				},
			},
			{
				ID: "credit_hours", Name: "Credit hours", Weight: 0.5,
				Flat: &Flat{
					PrimaryPatterns: Patterns(
						`\b\d(\.\d)?\s*(credit|cr\.?)\s*(hours?|hrs?)?\b`,
						`credit\s*hours?\s*:?\s*\d`,
						`\b\d\s*(semester\s*)?hours?\s*of\s*credit`,
						`\bcredits?\s*:\s*\d`,
					),
					ContextKeywords: Keywords("credit", "credits", "hours"),
					MinMatches:      1,
				},
			},
		},
	}},

	{ID: "meeting_info", Rule: &Flat{
		Name: "Class meeting days/times/location",
		PrimaryPatterns: Patterns(
			`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)s?\b`,
			`\b(mw|mwf|tr|tth|t/th|m/w|tu/th)\b`,
			`\d{1,2}:\d{2}\s*(am|pm|a\.m\.|p\.m\.)?`,
			`\b(room|rm\.?|building|hall|classroom|location)\b\s*:?\s*\w+`,
		),
		TextPatterns: Patterns(
			`\b(asynchronous|fully\s+online|online\s+course)\b`,
		),
		ContextKeywords: Keywords("meets", "meeting", "lecture", "class", "zoom", "online", "campus"),
		MinMatches:      2,
	}},

	{ID: "instructor_info", Rule: &Composite{
		Name: "Instructor name, contact information, and office hours",
		SubItems: []SubItem{
			{
				ID: "instructor_name", Name: "Instructor name", Weight: 0.34,
				Flat: &Flat{
					PrimaryPatterns: Patterns(
						`\b(instructor|professor|lecturer|faculty|taught\s+by)\s*(name)?\s*:?\s*(dr\.?|prof\.?)?\s*[a-z][a-z'\-]+\s+[a-z][a-z'\-]+`,
						`\bdr\.\s*[a-z][a-z'\-]+`,
					),
					ContextKeywords: Keywords("instructor", "professor", "dr"),
					MinMatches:      1,
				},
			},
			{
				ID: "contact", Name: "Contact information", Weight: 0.33,
				Flat: &Flat{
					PrimaryPatterns: Patterns(
						`[\w.+\-]+@[\w\-]+(\.[\w\-]+)+`,
						`\(?\d{3}\)?[\s.\-]\d{3}[\s.\-]\d{4}`,
					),
					ContextKeywords: Keywords("email", "phone", "contact"),
					MinMatches:      1,
				},
			},
			{
				ID: "office_hours", Name: "Office hours", Weight: 0.33,
				Flat: &Flat{
					PrimaryPatterns: Patterns(
						`office\s*hours?`,
						`student\s+hours`,
					),
					ContextKeywords: Keywords("appointment", "zoom", "office", "available"),
					MinMatches:      1,
				},
			},
		},
	}},

	{ID: "course_description", Rule: &Flat{
		Name: "University course description",
		PrimaryPatterns: Patterns(
			`course\s+description`,
			`catalog\s+description`,
			`bulletin\s+description`,
			`description\s+of\s+(the\s+)?course`,
		),
		ContextKeywords: Keywords("this course", "students", "introduces", "explores", "covers", "topics", "overview"),
		MinMatches:      1,
		MinTextLength:   100,
		Catalog:         CatalogDescription,
	}},

	{ID: "prerequisites", Rule: &Flat{
		Name: "Course prerequisites",
		PrimaryPatterns: Patterns(
			`pre-?requisites?\s*:?`,
			`\bprereqs?\b`,
			`co-?requisites?`,
			`no\s+pre-?requisites?`,
		),
		ContextKeywords: Keywords("required", "completion", "minimum grade", "permission", "enrollment"),
		MinMatches:      1,
		Catalog:         CatalogPrerequisites,
	}},

	{ID: "learning_outcomes", Rule: &Flat{
		Name: "Student learning outcomes",
		PrimaryPatterns: Patterns(
			`learning\s+outcomes?`,
			`learning\s+objectives?`,
			`course\s+(objectives?|goals?)`,
			`students\s+will\s+(be\s+able\s+to|learn|demonstrate)`,
			`upon\s+(successful\s+)?completion`,
		),
		ContextKeywords: Keywords("identify", "analyze", "apply", "demonstrate", "evaluate", "describe", "explain"),
		MinMatches:      1,
	}},

	{ID: "required_materials", Rule: &Flat{
		Name: "Required texts and/or course materials",
		PrimaryPatterns: Patterns(
			`required\s+(texts?|textbooks?|materials?|readings?)`,
			`textbooks?\s*:`,
			`course\s+materials?`,
			`isbn[\s:\-]*[\dx\-]{10,17}`,
			`no\s+(required\s+)?textbook`,
		),
		ContextKeywords: Keywords("edition", "publisher", "isbn", "author", "canvas", "open educational"),
		MinMatches:      1,
	}},

	{ID: "course_schedule", Rule: &Flat{
		Name: "Course schedule",
		PrimaryPatterns: Patterns(
			`(course|class|tentative|weekly)\s+(schedule|calendar|outline)`,
			`\bweek\s*\d{1,2}\b`,
			`\bmodule\s*\d{1,2}\b`,
			`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2}\b`,
			`\b\d{1,2}/\d{1,2}\b`,
		),
		ContextKeywords: Keywords("topic", "reading", "due", "assignment", "exam", "holiday", "break"),
		MinMatches:      2,
	}},

	{ID: "final_exam", Rule: &Flat{
		Name: "Final exam date and time",
		PrimaryPatterns: Patterns(
			`final\s+(exam|examination|assessment)`,
			`final\s+exam(ination)?\s*(date|time|schedule)?\s*:`,
			`final.{0,60}\b(monday|tuesday|wednesday|thursday|friday|saturday|\d{1,2}/\d{1,2}|\d{1,2}:\d{2})`,
		),
		ContextKeywords: Keywords("final", "exam", "date", "time", "cumulative"),
		MinMatches:      1,
	}},

	{ID: "grading_scale", Rule: &Flat{
		Name: "Grading scale",
		PrimaryPatterns: Patterns(
			`grad(ing|e)\s+scale`,
			`\b[a-d][+\-]?\s*[:=(]\s*\d{2,3}`,
			`\d{2,3}(\.\d+)?\s*%?\s*[-–]\s*\d{2,3}(\.\d+)?\s*%?\s*[:=]?\s*\(?[a-f][+\-]?\b`,
			`\b[a-d][+\-]?\s*[-–:=]?\s*\d{2,3}\s*[-–]\s*\d{2,3}`,
		),
		ContextKeywords: Keywords("scale", "letter grade", "points", "percent"),
		MinMatches:      2,
	}},

	{ID: "grade_weights", Rule: &Flat{
		Name: "Grade categories and weights",
		PrimaryPatterns: Patterns(
			`\d{1,3}(\.\d+)?\s*%`,
			`(grade|grading)\s+(breakdown|distribution|weights?|components?|categories)`,
			`weight(ed|s)?\s*:`,
			`\b\d{1,4}\s*points\b`,
		),
		ContextKeywords: Keywords("assignments", "quizzes", "exams", "participation", "homework", "project", "midterm"),
		MinMatches:      2,
	}},

	{ID: "syllabus_policy_link", Rule: &Flat{
		Name: "Link to VCU Syllabus Policy Statements",
		URLPatterns: Patterns(
			`provost\.vcu\.edu`,
			`syllabus[\-_]?(policy|statement)`,
			`vcu\.edu/.*syllab`,
		),
		TextPatterns: Patterns(
			`syllabus\s+policy\s+statements?`,
			`provost'?s?\s+(web\s*site|website|page)`,
			`university\s+syllabus\s+polic(y|ies)`,
		),
		ContextKeywords: Keywords("provost", "policy", "statements", "academic integrity"),
		MinMatches:      2,
		CheckURLs:       true,
	}},

	{ID: "library_statement", Rule: &Flat{
		Name: "VCU Libraries statement and link",
		PrimaryPatterns: Patterns(
			`library\s+resources`,
			`spaces,?\s+technology,?\s+and\s+services`,
		),
		URLPatterns: Patterns(
			`library\.vcu\.edu`,
		),
		TextPatterns: Patterns(
			`vcu\s+libraries`,
		),
		RequiredPhrases: Patterns(
			`vcu\s+libraries`,
		),
		ContextKeywords: Keywords("library", "libraries", "resources", "learning opportunities"),
		MinMatches:      2,
		CheckURLs:       true,
	}},
}

var recommended = []Entry{
	{ID: "attendance_policy", Rule: &Flat{
		Name: "Attendance and punctuality policies",
		PrimaryPatterns: Patterns(
			`attendance\s+(policy|policies|requirements?|is\s+(required|mandatory|expected))`,
			`punctual(ity)?`,
			`\b(tardiness|tardy|tardies)\b`,
			`absences?\s+(policy|will|are|may)`,
		),
		ContextKeywords: Keywords("attendance", "absent", "excused", "unexcused", "late"),
		MinMatches:      1,
	}},

	{ID: "technology_policy", Rule: &Flat{
		Name: "Technology and media policies",
		PrimaryPatterns: Patterns(
			`(technology|media|electronic\s+devices?|laptops?|cell\s*phones?)\s+(policy|policies|use|usage)`,
			`recording\s+(of\s+)?(class|lectures?|sessions?)`,
			`email\s+(response|communication)`,
			`respond\s+to\s+(all\s+)?emails?\s+within`,
		),
		ContextKeywords: Keywords("recording", "laptop", "phone", "email", "response", "zoom"),
		MinMatches:      1,
	}},
}
