package categoria

import (
	"sort"

	"retaguarda/internal/core/id"
)

// ArvoreNode is one category of the nested tree projection.
type ArvoreNode struct {
	ID     id.ID         `json:"id"`
	Codigo string        `json:"codigo"`
	Nome   string        `json:"nome"`
	Nivel  int           `json:"nivel"`
	Filhas []*ArvoreNode `json:"filhas"`
}

// BuildArvore nests flat categories by categoria_pai_id. Roots are level-1 categories;
// categories whose parent is not in items are dropped. Siblings are ordered by name.
func BuildArvore(items []*Categoria) []*ArvoreNode {
	nodes := make(map[id.ID]*ArvoreNode, len(items))
	for _, c := range items {
		nodes[c.ID] = &ArvoreNode{
			ID:     c.ID,
			Codigo: c.Codigo,
			Nome:   c.Nome,
			Nivel:  c.Nivel,
			Filhas: []*ArvoreNode{},
		}
	}

	roots := []*ArvoreNode{}
	for _, c := range items {
		node := nodes[c.ID]
		if c.CategoriaPaiID == nil {
			roots = append(roots, node)
			continue
		}
		if pai, ok := nodes[*c.CategoriaPaiID]; ok {
			pai.Filhas = append(pai.Filhas, node)
		}
	}

	sortArvore(roots)
	return roots
}

func sortArvore(nodes []*ArvoreNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Nome < nodes[j].Nome })
	for _, n := range nodes {
		sortArvore(n.Filhas)
	}
}
