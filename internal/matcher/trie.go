package matcher

import "strings"

type trieNode struct {
	children map[string]*trieNode
	service  string
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// ServiceTrie maps registered domains to a service name. Lookups walk the
// reversed domain labels, so a registered domain also covers all of its
// subdomains.
type ServiceTrie struct {
	root *trieNode
}

func NewServiceTrie() *ServiceTrie {
	return &ServiceTrie{root: newTrieNode()}
}

// Add registers a domain for a service. Registering the same domain twice
// overwrites the previous service.
func (t *ServiceTrie) Add(domain string, service string) {
	if domain == "" {
		return
	}
	labels := strings.Split(domain, ".")
	cur := t.root
	for i := len(labels) - 1; i >= 0; i-- {
		label := labels[i]
		child, ok := cur.children[label]
		if !ok {
			child = newTrieNode()
			cur.children[label] = child
		}
		cur = child
	}
	cur.service = service
}

// Find extracts the host from a URL and returns the service annotated at the
// deepest matching trie node, or "" when no registered domain covers it.
func (t *ServiceTrie) Find(url string) string {
	host := HostOf(url)
	if host == "" {
		return ""
	}
	labels := strings.Split(host, ".")
	cur := t.root
	service := ""
	for i := len(labels) - 1; i >= 0; i-- {
		child, ok := cur.children[labels[i]]
		if !ok {
			break
		}
		cur = child
		if cur.service != "" {
			service = cur.service
		}
	}
	return service
}

// HostOf returns the host portion of a URL: the text between the scheme
// separator and the first path separator, with a leading "www." stripped.
func HostOf(url string) string {
	host := url
	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}
	if idx := strings.IndexByte(host, '/'); idx >= 0 {
		host = host[:idx]
	}
	host = strings.TrimPrefix(host, "www.")
	return host
}
