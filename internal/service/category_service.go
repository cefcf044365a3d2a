package service

import (
	"context"
	"errors"
	"sort"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"
	"blendcatalog/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CategoryService defines business operations for the taxonomy tree.
type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	// RemoveAttribute detaches an OWN attribute from the node. Inherited
	// attributes are locked: they can only change via the ancestor.
	RemoveAttribute(ctx context.Context, id, attributeID uuid.UUID) error
	Reparent(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*dto.CategoryResponse, error)
	Tree(ctx context.Context) ([]dto.CategoryTreeNode, error)
	Flat(ctx context.Context) ([]dto.CategoryFlatNode, error)
	Delete(ctx context.Context, id uuid.UUID, force bool) error

	// EffectiveAttributeIDs resolves the effective attribute union for a set
	// of nodes — the Product service builds its validation on this.
	EffectiveAttributeIDs(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	// ExpandWithAncestors closes a category selection under ancestor
	// inclusion (idempotent union).
	ExpandWithAncestors(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error)
}

type categoryService struct {
	repo        repository.CategoryRepository
	attrRepo    repository.AttributeRepository
	productRepo repository.ProductRepository
}

func NewCategoryService(
	repo repository.CategoryRepository,
	attrRepo repository.AttributeRepository,
	productRepo repository.ProductRepository,
) CategoryService {
	return &categoryService{repo: repo, attrRepo: attrRepo, productRepo: productRepo}
}

// ── Arena ────────────────────────────────────────────────────────────────────
// The whole forest is materialized per operation: nodes keyed by id with a
// parent pointer, never a language-level hierarchy. Trees are small, so a
// full load is cheaper and simpler than recursive queries.

type categoryArena struct {
	nodes    map[uuid.UUID]*model.Category
	children map[uuid.UUID][]*model.Category // uuid.Nil keys the roots
}

func buildArena(list []model.Category) *categoryArena {
	a := &categoryArena{
		nodes:    make(map[uuid.UUID]*model.Category, len(list)),
		children: make(map[uuid.UUID][]*model.Category),
	}
	for i := range list {
		a.nodes[list[i].ID] = &list[i]
	}
	for i := range list {
		parent := uuid.Nil
		if list[i].ParentID != nil {
			parent = *list[i].ParentID
		}
		a.children[parent] = append(a.children[parent], &list[i])
	}
	for k := range a.children {
		sort.SliceStable(a.children[k], func(i, j int) bool {
			if a.children[k][i].Position != a.children[k][j].Position {
				return a.children[k][i].Position < a.children[k][j].Position
			}
			return a.children[k][i].Name < a.children[k][j].Name
		})
	}
	return a
}

// ancestorChain walks root→node. The node itself is the last element.
func (a *categoryArena) ancestorChain(id uuid.UUID) []*model.Category {
	var chain []*model.Category
	for cur := a.nodes[id]; cur != nil; {
		chain = append([]*model.Category{cur}, chain...)
		if cur.ParentID == nil {
			break
		}
		cur = a.nodes[*cur.ParentID]
	}
	return chain
}

// isAncestor reports whether candidate appears on node's strict ancestor chain.
func (a *categoryArena) isAncestor(candidate, node uuid.UUID) bool {
	cur := a.nodes[node]
	for cur != nil && cur.ParentID != nil {
		if *cur.ParentID == candidate {
			return true
		}
		cur = a.nodes[*cur.ParentID]
	}
	return false
}

// descendants returns every node strictly below id, pre-order.
func (a *categoryArena) descendants(id uuid.UUID) []*model.Category {
	var out []*model.Category
	var walk func(uuid.UUID)
	walk = func(cur uuid.UUID) {
		for _, child := range a.children[cur] {
			out = append(out, child)
			walk(child.ID)
		}
	}
	walk(id)
	return out
}

// effectiveEntry tags provenance so inherited entries can be told apart from
// own (removable) ones.
type effectiveEntry struct {
	attributeID uuid.UUID
	inherited   bool
	via         uuid.UUID // contributing ancestor when inherited
}

// effectiveFor computes own ∪ ancestor attribute links, root-first, first
// contributor wins on duplicates.
func (a *categoryArena) effectiveFor(id uuid.UUID) []effectiveEntry {
	chain := a.ancestorChain(id)
	var out []effectiveEntry
	seen := make(map[uuid.UUID]bool)
	for _, node := range chain {
		for _, link := range node.Attributes {
			if seen[link.AttributeID] {
				continue
			}
			seen[link.AttributeID] = true
			out = append(out, effectiveEntry{
				attributeID: link.AttributeID,
				inherited:   node.ID != id,
				via:         node.ID,
			})
		}
	}
	return out
}

func (a *categoryArena) effectiveIDSet(id uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool)
	for _, e := range a.effectiveFor(id) {
		set[e.attributeID] = true
	}
	return set
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func (s *categoryService) loadArena(ctx context.Context) (*categoryArena, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildArena(list), nil
}

func (s *categoryService) mapCategory(ctx context.Context, arena *categoryArena, c *model.Category) (*dto.CategoryResponse, error) {
	entries := arena.effectiveFor(c.ID)
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.attributeID)
	}
	attrs, err := s.attrRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Attribute, len(attrs))
	for _, a := range attrs {
		byID[a.ID] = a
	}

	effective := make([]dto.EffectiveAttribute, 0, len(entries))
	for _, e := range entries {
		a, ok := byID[e.attributeID]
		if !ok {
			continue
		}
		ea := dto.EffectiveAttribute{Attribute: mapAttribute(a), Inherited: e.inherited}
		if e.inherited {
			via := e.via.String()
			ea.InheritedVia = &via
		}
		effective = append(effective, ea)
	}

	resp := &dto.CategoryResponse{
		ID:                  c.ID.String(),
		Name:                c.Name,
		Slug:                c.Slug,
		Position:            c.Position,
		ImageID:             c.ImageID,
		Status:              c.Status,
		EffectiveAttributes: effective,
	}
	if c.ParentID != nil {
		pid := c.ParentID.String()
		resp.ParentID = &pid
	}
	return resp, nil
}

// ── Operations ───────────────────────────────────────────────────────────────

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	var parentID *uuid.UUID
	if req.ParentID != nil {
		pid, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, apierror.Validation("InvalidParentID", "parent_id is not a valid uuid")
		}
		if _, err := s.repo.FindByID(ctx, pid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("CategoryNotFound", "parent category %s not found", pid)
			}
			return nil, err
		}
		parentID = &pid
	}

	links, err := s.attributeLinks(ctx, req.AttributeIDs)
	if err != nil {
		return nil, err
	}

	c := &model.Category{
		Name:     req.Name,
		Slug:     slugify(req.Name),
		ParentID: parentID,
		Position: req.Position,
		ImageID:  req.ImageID,
		Status:   model.CategoryStatusActive,
	}
	if err := s.repo.Create(ctx, c, links); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("DuplicateCategorySlug",
				"a category with slug %q already exists", c.Slug)
		}
		return nil, err
	}

	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapCategory(ctx, arena, arena.nodes[c.ID])
}

// attributeLinks validates referenced attributes and builds ordered links.
func (s *categoryService) attributeLinks(ctx context.Context, attributeIDs []string) ([]model.CategoryAttribute, error) {
	links := make([]model.CategoryAttribute, 0, len(attributeIDs))
	seen := make(map[uuid.UUID]bool, len(attributeIDs))
	for i, raw := range attributeIDs {
		aid, err := uuid.Parse(raw)
		if err != nil {
			return nil, apierror.Validation("InvalidAttributeID", "attribute id %q is not a valid uuid", raw)
		}
		if seen[aid] {
			continue
		}
		seen[aid] = true
		if _, err := s.attrRepo.FindByID(ctx, aid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("AttributeNotFound", "attribute %s not found", aid)
			}
			return nil, err
		}
		links = append(links, model.CategoryAttribute{AttributeID: aid, Position: i})
	}
	return links, nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := arena.nodes[id]
	if !ok {
		return nil, apierror.NotFound("CategoryNotFound", "category %s not found", id)
	}
	return s.mapCategory(ctx, arena, node)
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("CategoryNotFound", "category %s not found", id)
		}
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
		c.Slug = slugify(*req.Name)
	}
	if req.Position != nil {
		c.Position = *req.Position
	}
	if req.ImageID != nil {
		c.ImageID = req.ImageID
	}
	if req.Status != nil {
		c.Status = *req.Status
	}

	var links []model.CategoryAttribute
	if req.AttributeIDs != nil {
		links, err = s.attributeLinks(ctx, req.AttributeIDs)
		if err != nil {
			return nil, err
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, c); err != nil {
			return err
		}
		if req.AttributeIDs != nil {
			return s.repo.ReplaceAttributeLinksTx(tx, id, links)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapCategory(ctx, arena, arena.nodes[id])
}

func (s *categoryService) RemoveAttribute(ctx context.Context, id, attributeID uuid.UUID) error {
	arena, err := s.loadArena(ctx)
	if err != nil {
		return err
	}
	node, ok := arena.nodes[id]
	if !ok {
		return apierror.NotFound("CategoryNotFound", "category %s not found", id)
	}

	for _, e := range arena.effectiveFor(id) {
		if e.attributeID != attributeID {
			continue
		}
		if e.inherited {
			return apierror.Invariant("InheritedAttributeLocked",
				"attribute %s is inherited from category %s and cannot be detached here",
				attributeID, e.via)
		}
		// Own link — rebuild the own set without it.
		links := make([]model.CategoryAttribute, 0, len(node.Attributes))
		for _, l := range node.Attributes {
			if l.AttributeID != attributeID {
				links = append(links, model.CategoryAttribute{AttributeID: l.AttributeID, Position: l.Position})
			}
		}
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.repo.ReplaceAttributeLinksTx(tx, id, links)
		})
	}
	return apierror.NotFound("AttributeNotFound",
		"attribute %s is not in the effective set of category %s", attributeID, id)
}

func (s *categoryService) Reparent(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*dto.CategoryResponse, error) {
	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := arena.nodes[id]
	if !ok {
		return nil, apierror.NotFound("CategoryNotFound", "category %s not found", id)
	}

	if newParentID != nil {
		if *newParentID == id {
			return nil, apierror.Invariant("CyclicCategoryParent",
				"category %s cannot be its own parent", id)
		}
		if _, ok := arena.nodes[*newParentID]; !ok {
			return nil, apierror.NotFound("CategoryNotFound", "parent category %s not found", *newParentID)
		}
		// Walking the proposed ancestor chain before committing is what
		// keeps the forest acyclic.
		if arena.isAncestor(id, *newParentID) || id == *newParentID {
			return nil, apierror.Invariant("CyclicCategoryParent",
				"category %s is a descendant of %s; re-parenting would create a cycle", *newParentID, id)
		}
	}

	// Idempotent: same parent means nothing to recompute.
	sameParent := (node.ParentID == nil && newParentID == nil) ||
		(node.ParentID != nil && newParentID != nil && *node.ParentID == *newParentID)
	if sameParent {
		return s.mapCategory(ctx, arena, node)
	}

	// Simulate the move, then recompute every affected product's effective
	// union under the new shape. Values whose attribute fell out of the
	// union are pruned (conservative drop policy).
	node.ParentID = newParentID
	subtree := []uuid.UUID{id}
	for _, d := range arena.descendants(id) {
		subtree = append(subtree, d.ID)
	}

	products, err := s.productRepo.ListByCategoryIDs(ctx, subtree)
	if err != nil {
		return nil, err
	}

	type pruneTarget struct {
		productID    uuid.UUID
		attributeIDs []uuid.UUID
	}
	var prunes []pruneTarget
	for _, p := range products {
		union := make(map[uuid.UUID]bool)
		for _, pc := range p.Categories {
			if _, ok := arena.nodes[pc.CategoryID]; !ok {
				continue
			}
			for aid := range arena.effectiveIDSet(pc.CategoryID) {
				union[aid] = true
			}
		}
		var stale []uuid.UUID
		for _, v := range p.AttributeValues {
			if !union[v.AttributeID] {
				stale = append(stale, v.AttributeID)
			}
		}
		if len(stale) > 0 {
			prunes = append(prunes, pruneTarget{productID: p.ID, attributeIDs: stale})
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.SetParentTx(tx, id, newParentID); err != nil {
			return err
		}
		for _, p := range prunes {
			if err := s.productRepo.DeleteAttributeValuesTx(tx, []uuid.UUID{p.productID}, p.attributeIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	for _, p := range prunes {
		log.Warn().
			Str("category_id", id.String()).
			Str("product_id", p.productID.String()).
			Int("values_dropped", len(p.attributeIDs)).
			Msg("re-parent pruned attribute values no longer in effective set")
	}

	arena, err = s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapCategory(ctx, arena, arena.nodes[id])
}

func (s *categoryService) Tree(ctx context.Context) ([]dto.CategoryTreeNode, error) {
	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	var build func(parent uuid.UUID) ([]dto.CategoryTreeNode, error)
	build = func(parent uuid.UUID) ([]dto.CategoryTreeNode, error) {
		nodes := make([]dto.CategoryTreeNode, 0, len(arena.children[parent]))
		for _, c := range arena.children[parent] {
			resp, err := s.mapCategory(ctx, arena, c)
			if err != nil {
				return nil, err
			}
			children, err := build(c.ID)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, dto.CategoryTreeNode{CategoryResponse: *resp, Children: children})
		}
		return nodes, nil
	}
	return build(uuid.Nil)
}

func (s *categoryService) Flat(ctx context.Context) ([]dto.CategoryFlatNode, error) {
	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	var out []dto.CategoryFlatNode
	var walk func(parent uuid.UUID, level int) error
	walk = func(parent uuid.UUID, level int) error {
		for _, c := range arena.children[parent] {
			resp, err := s.mapCategory(ctx, arena, c)
			if err != nil {
				return err
			}
			out = append(out, dto.CategoryFlatNode{CategoryResponse: *resp, Level: level})
			if err := walk(c.ID, level+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(uuid.Nil, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID, force bool) error {
	arena, err := s.loadArena(ctx)
	if err != nil {
		return err
	}
	if _, ok := arena.nodes[id]; !ok {
		return apierror.NotFound("CategoryNotFound", "category %s not found", id)
	}

	descendants := arena.descendants(id)
	if len(descendants) > 0 && !force {
		return apierror.Dependency("HasDescendants",
			"category %s has %d descendant(s); pass force to cascade", id, len(descendants))
	}

	subtree := []uuid.UUID{id}
	for _, d := range descendants {
		subtree = append(subtree, d.ID)
	}
	refs, err := s.productRepo.CountByCategoryIDs(ctx, subtree)
	if err != nil {
		return err
	}
	if refs > 0 && !force {
		return apierror.Dependency("ReferencedByProducts",
			"category %s is referenced by %d product(s); pass force to detach", id, refs)
	}

	// Forced cascade: detach products from the deleted subtree, prune values
	// that are no longer effective, then remove nodes leaves-first.
	products, err := s.productRepo.ListByCategoryIDs(ctx, subtree)
	if err != nil {
		return err
	}
	deleted := make(map[uuid.UUID]bool, len(subtree))
	for _, cid := range subtree {
		deleted[cid] = true
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, p := range products {
			var kept []uuid.UUID
			union := make(map[uuid.UUID]bool)
			for _, pc := range p.Categories {
				if deleted[pc.CategoryID] {
					continue
				}
				kept = append(kept, pc.CategoryID)
				for aid := range arena.effectiveIDSet(pc.CategoryID) {
					union[aid] = true
				}
			}
			if err := s.productRepo.ReplaceCategoriesTx(tx, p.ID, kept); err != nil {
				return err
			}
			var stale []uuid.UUID
			for _, v := range p.AttributeValues {
				if !union[v.AttributeID] {
					stale = append(stale, v.AttributeID)
				}
			}
			if err := s.productRepo.DeleteAttributeValuesTx(tx, []uuid.UUID{p.ID}, stale); err != nil {
				return err
			}
		}
		// Leaves first so parent references never dangle mid-transaction.
		for i := len(subtree) - 1; i >= 0; i-- {
			if err := s.repo.DeleteTx(tx, subtree[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *categoryService) EffectiveAttributeIDs(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	union := make(map[uuid.UUID]bool)
	for _, cid := range categoryIDs {
		if _, ok := arena.nodes[cid]; !ok {
			return nil, apierror.NotFound("CategoryNotFound", "category %s not found", cid)
		}
		for aid := range arena.effectiveIDSet(cid) {
			union[aid] = true
		}
	}
	return union, nil
}

func (s *categoryService) ExpandWithAncestors(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error) {
	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, cid := range categoryIDs {
		if _, ok := arena.nodes[cid]; !ok {
			return nil, apierror.NotFound("CategoryNotFound", "category %s not found", cid)
		}
		for _, node := range arena.ancestorChain(cid) {
			if !seen[node.ID] {
				seen[node.ID] = true
				out = append(out, node.ID)
			}
		}
	}
	return out, nil
}
