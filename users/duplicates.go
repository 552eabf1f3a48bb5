package users

import (
	"errors"
	"slices"
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dominikbraun/graph"
	"github.com/eapache/queue"
)

const (
	AttributeName      = "name"
	AttributeBirthDate = "birthDate"
	AttributePhone     = "phone"

	MatchLikelyDuplicate = "likelyDuplicate"
	MatchNameOnly        = "nameOnly"
	MatchPhoneOnly       = "phoneOnly"

	matchAttributeKey = "match"
)

var attributeGetters = map[string]func(user *User) string{
	AttributeName:      normalizedName,
	AttributeBirthDate: birthDate,
	AttributePhone:     normalizedPhone,
}

// DuplicateCluster is a group of users connected by shared identifying
// attributes. Matches maps each user id to the match categories found
// against other members.
type DuplicateCluster struct {
	Users   []*User
	Matches map[string][]string
}

type DuplicateFinder struct {
	graph       graph.Graph[string, *User]
	users       []*User
	byAttribute map[string]map[string][]*User
}

func NewDuplicateFinder(users []*User) *DuplicateFinder {
	withIds := make([]*User, 0, len(users))
	for _, u := range users {
		if u != nil && u.Id != nil {
			withIds = append(withIds, u)
		}
	}
	return &DuplicateFinder{
		graph:       graph.New((*User).IdHex),
		users:       withIds,
		byAttribute: indexByAttribute(withIds),
	}
}

// Clusters returns the groups of probable duplicates ordered by the name of
// their first member. Users without a match are omitted.
func (d *DuplicateFinder) Clusters() ([]DuplicateCluster, error) {
	for _, u := range d.users {
		if err := d.graph.AddVertex(u); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, err
		}
	}
	for _, u := range d.users {
		if err := d.addMatchEdges(u); err != nil {
			return nil, err
		}
	}

	adjacency, err := d.graph.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	visited := mapset.NewThreadUnsafeSet[string]()
	clusters := make([]DuplicateCluster, 0)
	for _, start := range d.users {
		if visited.Contains(start.IdHex()) {
			continue
		}

		cluster := DuplicateCluster{Matches: map[string][]string{}}
		q := queue.New()
		q.Add(start.IdHex())
		for q.Length() != 0 {
			id := q.Remove().(string)
			if !visited.Add(id) {
				continue
			}

			user, err := d.graph.Vertex(id)
			if err != nil {
				return nil, err
			}
			cluster.Users = append(cluster.Users, user)

			categories := mapset.NewThreadUnsafeSet[string]()
			for neighbour, edge := range adjacency[id] {
				q.Add(neighbour)
				categories.Add(edge.Properties.Attributes[matchAttributeKey])
			}
			if categories.Cardinality() > 0 {
				matches := categories.ToSlice()
				slices.Sort(matches)
				cluster.Matches[id] = matches
			}
		}

		if len(cluster.Users) > 1 {
			slices.SortFunc(cluster.Users, compareUsers)
			clusters = append(clusters, cluster)
		}
	}

	slices.SortFunc(clusters, func(a, b DuplicateCluster) int {
		return compareUsers(a.Users[0], b.Users[0])
	})
	return clusters, nil
}

func (d *DuplicateFinder) addMatchEdges(user *User) error {
	shared := map[string][]string{}
	for attribute, getter := range attributeGetters {
		value := getter(user)
		if value == "" {
			continue
		}
		for _, other := range d.byAttribute[attribute][value] {
			if other.IdHex() != user.IdHex() {
				shared[other.IdHex()] = append(shared[other.IdHex()], attribute)
			}
		}
	}

	for otherId, attributes := range shared {
		category := matchCategory(attributes)
		if category == "" {
			continue
		}
		edgeAttributes := graph.EdgeAttribute(matchAttributeKey, category)
		if err := d.graph.AddEdge(user.IdHex(), otherId, edgeAttributes); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return err
		}
	}
	return nil
}

// matchCategory ranks the shared attributes of two users. A shared birth
// date alone is not reported.
func matchCategory(attributes []string) string {
	hasName := slices.Contains(attributes, AttributeName)
	hasPhone := slices.Contains(attributes, AttributePhone)
	hasBirthDate := slices.Contains(attributes, AttributeBirthDate)

	switch {
	case hasName && (hasBirthDate || hasPhone):
		return MatchLikelyDuplicate
	case hasPhone:
		return MatchPhoneOnly
	case hasName:
		return MatchNameOnly
	default:
		return ""
	}
}

func indexByAttribute(users []*User) map[string]map[string][]*User {
	index := map[string]map[string][]*User{}
	for attribute, getter := range attributeGetters {
		index[attribute] = map[string][]*User{}
		for _, u := range users {
			if value := getter(u); value != "" {
				index[attribute][value] = append(index[attribute][value], u)
			}
		}
	}
	return index
}

func compareUsers(a, b *User) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.IdHex(), b.IdHex())
}

func normalizedName(user *User) string {
	return strings.Join(strings.Fields(strings.ToLower(user.Name)), " ")
}

func birthDate(user *User) string {
	if user.BirthDate == nil {
		return ""
	}
	return *user.BirthDate
}

func normalizedPhone(user *User) string {
	if user.Phone == nil {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, *user.Phone)
}
