package answer

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

type rule struct {
	keywords []string
	reply    func(question string) string
}

func fixed(s string) func(string) string {
	return func(string) string { return s }
}

// Keywords match as substrings of the lower-cased question, in order.
var rules = []rule{
	{
		keywords: []string{"typescript", "ts"},
		reply:    fixed("TypeScript is a programming language developed by Microsoft. It is a typed superset of JavaScript that compiles to plain JavaScript. Static type definitions help catch errors during development and make code easier to maintain."),
	},
	{
		keywords: []string{"javascript", "js"},
		reply:    fixed("JavaScript is a high-level, interpreted programming language and one of the core technologies of the web. It enables interactive pages and supports event-driven, functional and object-oriented styles."),
	},
	{
		keywords: []string{"node", "nodejs"},
		reply:    fixed("Node.js is a JavaScript runtime built on Chrome's V8 engine. It runs JavaScript on the server and uses an event-driven, non-blocking I/O model that keeps network applications lightweight and scalable."),
	},
	{
		keywords: []string{"react"},
		reply:    fixed("React is a JavaScript library for building user interfaces, developed by Facebook. It composes reusable UI components, updates the page through a virtual DOM and supports client-side and server-side rendering."),
	},
	{
		keywords: []string{"database", "sql"},
		reply:    fixed("A database is an organized collection of data stored and accessed electronically. SQL is the language used to define, query and update relational databases."),
	},
	{
		keywords: []string{"api"},
		reply:    fixed("An API (Application Programming Interface) defines how software components talk to each other. Web services commonly expose REST APIs over HTTP using methods like GET, POST, PUT and DELETE."),
	},
	{
		keywords: []string{"golang", "go "},
		reply:    fixed("Go is an open source programming language designed at Google. It is statically typed and compiled, with built-in concurrency through goroutines and channels, a fast compiler and a small, readable standard library."),
	},
	{
		keywords: []string{"subscription", "billing", "quota"},
		reply:    fixed("Every account gets 3 free messages per month. After that, messages are charged to your most recent active subscription bundle. Basic includes 10 messages, Pro 100 and Enterprise is unlimited."),
	},
	{
		keywords: []string{"hello", "hi"},
		reply:    fixed("Hello! I'm an AI assistant. How can I help you today? Ask me anything about programming, technology or general topics."),
	},
	{
		keywords: []string{"what is", "what are"},
		reply: func(q string) string {
			return fmt.Sprintf("Based on your question %q, here is some general information. This is a simulated response; a real deployment would generate a contextually relevant and comprehensive answer with a language model.", q)
		},
	},
	{
		keywords: []string{"how", "why"},
		reply: func(q string) string {
			return fmt.Sprintf("That's an interesting question about %q. A real assistant would walk through a detailed, step-by-step explanation. This simulated response demonstrates the chat flow.", q)
		},
	},
}

func fallback(q string) string {
	return fmt.Sprintf("Thank you for your question: %q. This is a simulated AI response. In production it would be generated by a model that understands context and tailors the answer to your question with relevant details and examples.", q)
}

// Generate returns the canned answer for question and its token estimate.
// Tokens are counted as one per four UTF-16 code units, rounded up, for
// both the answer and the question.
func Generate(question string) (string, int) {
	lower := strings.ToLower(question)
	reply := fallback(question)
	for _, r := range rules {
		if containsAny(lower, r.keywords) {
			reply = r.reply(question)
			break
		}
	}
	return reply, Tokens(reply) + Tokens(question)
}

// Tokens estimates the token count of s as ceil(n/4), where n is the
// length of s in UTF-16 code units.
func Tokens(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return (n + 3) / 4
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
