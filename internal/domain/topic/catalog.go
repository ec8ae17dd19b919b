package topic

import (
	"math/rand"
	"strconv"
	"strings"
)

// Catalog is an ordered collection of topics keyed by a short identifier.
type Catalog struct {
	keys   []string
	topics map[string]*Topic
	rng    *rand.Rand
}

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithRandSource sets a deterministic random source for topic picking.
func WithRandSource(src rand.Source) Option {
	return func(c *Catalog) {
		if src != nil {
			c.rng = rand.New(src) //nolint:gosec // topic picking needs no cryptographic randomness
		}
	}
}

// NewCatalog builds a catalog with the built-in topics.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		topics: make(map[string]*Topic),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, bt := range builtinTopics {
		c.add(bt.key, bt.topic)
	}
	return c
}

func (c *Catalog) add(key string, t *Topic) {
	if _, exists := c.topics[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.topics[key] = t
}

// Keys returns topic keys in declared order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Get returns the topic for a key.
func (c *Catalog) Get(key string) (*Topic, bool) {
	t, ok := c.topics[key]
	return t, ok
}

// Len returns the number of topics in the catalog.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Random picks a topic at random, in declared-key space.
func (c *Catalog) Random() *Topic {
	if len(c.keys) == 0 {
		return nil
	}
	var idx int
	if c.rng != nil {
		idx = c.rng.Intn(len(c.keys))
	} else {
		idx = rand.Intn(len(c.keys)) //nolint:gosec // topic picking needs no cryptographic randomness
	}
	return c.topics[c.keys[idx]]
}

// Select parses user input into a topic choice. It accepts a catalog key, a
// 1-based position number, or "random", and returns ok=false for anything
// else. Invalid input is an expected condition, not an error.
func (c *Catalog) Select(input string) (*Topic, bool) {
	choice := strings.ToLower(strings.TrimSpace(input))
	if choice == "" {
		return nil, false
	}
	if choice == "random" || strings.Contains(choice, "random") {
		return c.Random(), true
	}
	if t, ok := c.topics[choice]; ok {
		return t, true
	}
	if n, err := strconv.Atoi(choice); err == nil {
		if n >= 1 && n <= len(c.keys) {
			return c.topics[c.keys[n-1]], true
		}
		return nil, false
	}
	return nil, false
}

type builtin struct {
	key   string
	topic *Topic
}

// Built-in topic configuration. Some entries repeat a description across
// related terms, and weights above 1.1 mark the keywords that improvement
// suggestions single out when missed.
var builtinTopics = []builtin{
	{
		key: "weather",
		topic: &Topic{
			Name:        "Weather",
			Description: "Understanding weather patterns and atmospheric conditions",
			Keywords: []Keyword{
				{Term: "temperature", Description: "Driven by solar radiation, altitude, and latitude", Weight: 1.2},
				{Term: "humidity", Description: "Amount of moisture in the air affecting comfort and precipitation", Weight: 1.0},
				{Term: "air pressure", Description: "Influences wind and storm systems", Weight: 1.0},
				{Term: "wind patterns", Description: "Caused by pressure differences and Earth's rotation", Weight: 1.0},
				{Term: "precipitation", Description: "Rain, snow, sleet, or hail depending on atmospheric conditions", Weight: 1.2},
			},
			Introduction: "Hey! I've heard that you have some interesting insights about weather patterns. Could you tell me more? What do you think has the biggest influence on weather?",
		},
	},
	{
		key: "software_performance",
		topic: &Topic{
			Name:        "Software Application Performance",
			Description: "Factors affecting software application efficiency and speed",
			Keywords: []Keyword{
				{Term: "algorithm efficiency", Description: "Complexity and optimization of code logic", Weight: 1.3},
				{Term: "hardware resources", Description: "CPU speed, memory capacity, and storage performance", Weight: 1.0},
				{Term: "network latency", Description: "Especially for distributed or cloud-based apps", Weight: 1.0},
				{Term: "bandwidth", Description: "Especially for distributed or cloud-based apps", Weight: 1.0},
				{Term: "concurrency", Description: "Threading, async processing, and scaling ability", Weight: 1.2},
				{Term: "load handling", Description: "Threading, async processing, and scaling ability", Weight: 1.0},
				{Term: "database query optimization", Description: "Indexing, caching, and reducing I/O bottlenecks", Weight: 1.2},
			},
			Introduction: "Hey! I've heard that you have some interesting insights about software application performance. Could you tell me more? What do you think has the biggest influence on how fast applications run?",
		},
	},
	{
		key: "road_traffic",
		topic: &Topic{
			Name:        "Road Traffic",
			Description: "Factors affecting traffic flow and road congestion",
			Keywords: []Keyword{
				{Term: "road infrastructure", Description: "Quality, layout, and capacity of roads", Weight: 1.2},
				{Term: "traffic volume", Description: "Number of vehicles and peak-hour surges", Weight: 1.2},
				{Term: "traffic signals", Description: "Synchronization, signage, and smart systems", Weight: 1.0},
				{Term: "traffic control", Description: "Synchronization, signage, and smart systems", Weight: 1.0},
				{Term: "accidents", Description: "Unexpected disruptions reducing flow", Weight: 1.0},
				{Term: "roadworks", Description: "Unexpected disruptions reducing flow", Weight: 1.0},
				{Term: "weather conditions", Description: "Rain, snow, and fog affecting speed and safety", Weight: 1.0},
			},
			Introduction: "Hey! I've heard that you have some interesting insights about road traffic and what causes congestion. Could you tell me more? What do you think has the biggest influence on traffic flow?",
		},
	},
	{
		key: "job_interview",
		topic: &Topic{
			Name:        "Successful Job Interview",
			Description: "Key factors for performing well in job interviews",
			Keywords: []Keyword{
				{Term: "preparation", Description: "Understanding the company and role", Weight: 1.3},
				{Term: "research", Description: "Understanding the company and role", Weight: 1.0},
				{Term: "communication skills", Description: "Clear, concise, and confident speaking", Weight: 1.2},
				{Term: "body language", Description: "Eye contact, posture, and facial expressions", Weight: 1.0},
				{Term: "relevant experience", Description: "Direct alignment with job requirements", Weight: 1.0},
				{Term: "skills", Description: "Direct alignment with job requirements", Weight: 1.0},
				{Term: "positive attitude", Description: "Showing adaptability and enthusiasm", Weight: 1.0},
				{Term: "cultural fit", Description: "Showing adaptability and enthusiasm", Weight: 1.0},
			},
			Introduction: "Hey! I've heard that you have some interesting insights about what makes job interviews successful. Could you tell me more? What do you think has the biggest influence on interview success?",
		},
	},
	{
		key: "volcanic_city_planning",
		topic: &Topic{
			Name:        "City Planning in Volcanic Areas",
			Description: "Urban planning considerations for volcanic hazard zones",
			Keywords: []Keyword{
				{Term: "hazard mapping", Description: "Identifying lava flow, ashfall, and lahar zones", Weight: 1.3},
				{Term: "lava flow", Description: "Identifying lava flow, ashfall, and lahar zones", Weight: 1.0},
				{Term: "ashfall", Description: "Identifying lava flow, ashfall, and lahar zones", Weight: 1.0},
				{Term: "lahar", Description: "Identifying lava flow, ashfall, and lahar zones", Weight: 1.0},
				{Term: "evacuation routes", Description: "Multiple, well-marked, and easily accessible", Weight: 1.2},
				{Term: "land use zoning", Description: "Keeping high-risk zones free of permanent settlements", Weight: 1.0},
				{Term: "monitoring systems", Description: "Seismic, thermal, and gas detection", Weight: 1.0},
				{Term: "early warning systems", Description: "Seismic, thermal, and gas detection", Weight: 1.2},
				{Term: "emergency infrastructure", Description: "Shelters, supply depots, and medical facilities", Weight: 1.0},
			},
			Introduction: "Hey! I've heard that you have some interesting insights about city planning in volcanic areas. Could you tell me more? What do you think has the biggest influence on safe urban development near volcanoes?",
		},
	},
}
