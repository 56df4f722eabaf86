package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"sitesctl/internal/domain"
)

// typeComponents collects the custom editors and forms embedded in a set of
// types, each listed once in first-seen order.
type typeComponents struct {
	Editors []string
	Forms   []string
}

func (c *typeComponents) add(def domain.TypeDefinition) {
	for _, e := range def.CustomEditors() {
		if !slices.Contains(c.Editors, e) {
			c.Editors = append(c.Editors, e)
		}
	}
	for _, f := range def.CustomForms() {
		if !slices.Contains(c.Forms, f) {
			c.Forms = append(c.Forms, f)
		}
	}
}

func (c *typeComponents) names() []string {
	return append(slices.Clone(c.Editors), c.Forms...)
}

// DownloadTypes saves the expanded definitions of the named types into the
// source tree, then downloads the components they embed. Names must match a
// server type exactly; duplicates are saved once.
func (s *AssetService) DownloadTypes(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return domain.ErrValidation("at least one type name is required")
	}
	if _, err := s.connect(ctx); err != nil {
		return err
	}

	results := settle(ctx, s.cfg.Concurrency, names, func(ctx context.Context, name string) (*domain.ContentType, error) {
		return s.server.GetContentType(ctx, name, true)
	})

	var types []domain.ContentType
	var seen []string
	for i, r := range results {
		name := names[i]
		if r.Err != nil || r.Value == nil || r.Value.Name != name {
			if r.Err != nil && !domain.IsNotFound(r.Err) {
				s.logger.Warn("type lookup failed", "type", name, "error", r.Err)
			}
			s.report.Error("type %s does not exist", name)
			continue
		}
		if slices.Contains(seen, name) {
			continue
		}
		seen = append(seen, name)
		types = append(types, *r.Value)
	}
	if len(types) == 0 {
		return domain.ErrNotFound("no content type to download")
	}

	var comps typeComponents
	for _, ct := range types {
		path, err := s.types.Save(ct.Definition)
		if err != nil {
			return fmt.Errorf("save type %s: %w", ct.Name, err)
		}
		s.report.Progress("save type %s", path)
		comps.add(ct.Definition)
	}

	if len(comps.Editors) > 0 {
		s.report.Progress("will download content field editor %s", joinNames(comps.Editors))
	}
	if len(comps.Forms) > 0 {
		s.report.Progress("will download content form %s", joinNames(comps.Forms))
	}
	if len(comps.Editors) == 0 && len(comps.Forms) == 0 {
		return nil
	}
	if err := s.components.DownloadComponents(ctx, comps.names()); err != nil {
		return fmt.Errorf("download components: %w", err)
	}
	return nil
}

// ClassifyTypes routes every name to create when no existing type has
// exactly that name and to update otherwise. The two lists are disjoint and
// together hold every name.
func ClassifyTypes(names, existing []string) (create, update []string) {
	for _, name := range names {
		if slices.Contains(existing, name) {
			update = append(update, name)
		} else {
			create = append(create, name)
		}
	}
	return create, update
}

// UploadTypes pushes the saved definitions of the named types to the server.
// The components they embed are uploaded first. New types are created one
// at a time; existing types are updated concurrently. A failed type does not
// stop the others.
func (s *AssetService) UploadTypes(ctx context.Context, names []string) error {
	var (
		local []string
		defs  = make(map[string]domain.TypeDefinition)
		comps typeComponents
	)
	for _, name := range names {
		if !s.types.Exists(name) {
			s.report.Error("type %s does not exist", name)
			continue
		}
		if slices.Contains(local, name) {
			continue
		}
		def, err := s.types.Load(name)
		if err != nil {
			s.report.Error("failed to read type %s: %v", name, err)
			continue
		}
		local = append(local, name)
		defs[name] = def
		comps.add(def)
	}
	if len(local) == 0 {
		return domain.ErrNotFound("no content type to upload")
	}

	if _, err := s.connect(ctx); err != nil {
		return err
	}

	if len(comps.Editors) > 0 {
		s.report.Progress("will upload content field editor %s", joinNames(comps.Editors))
	}
	if len(comps.Forms) > 0 {
		s.report.Progress("will upload content form %s", joinNames(comps.Forms))
	}
	if err := s.uploadComponents(ctx, comps.names()); err != nil {
		s.logger.Warn("component upload failed", "error", err)
		s.report.Error("failed to upload components: %v", err)
	}

	lookups := settle(ctx, s.cfg.Concurrency, local, func(ctx context.Context, name string) (*domain.ContentType, error) {
		return s.server.GetContentType(ctx, name, false)
	})
	var existing []string
	for i, r := range lookups {
		if r.Err != nil {
			if !domain.IsNotFound(r.Err) {
				s.logger.Warn("type lookup failed", "type", local[i], "error", r.Err)
			}
			continue
		}
		existing = append(existing, r.Value.Name)
	}

	toCreate, toUpdate := ClassifyTypes(local, existing)
	if len(toCreate) > 0 {
		s.report.Progress("will create type %s", joinNames(toCreate))
	}
	if len(toUpdate) > 0 {
		s.report.Progress("will update type %s", joinNames(toUpdate))
	}

	created := sequential(ctx, toCreate, func(ctx context.Context, name string) error {
		ct, err := s.server.CreateContentType(ctx, defs[name])
		if err != nil {
			return err
		}
		s.report.Progress("type %s created", ct.Name)
		return nil
	})
	failed := 0
	for _, r := range created {
		if r.Err != nil {
			failed++
			s.report.Error("failed to create type %s: %v", r.Input, r.Err)
		}
	}

	updated := settle(ctx, s.cfg.Concurrency, toUpdate, func(ctx context.Context, name string) (*domain.ContentType, error) {
		return s.server.UpdateContentType(ctx, defs[name])
	})
	for i, r := range updated {
		if r.Err != nil {
			failed++
			s.report.Error("failed to update type %s: %v", toUpdate[i], r.Err)
			continue
		}
		s.report.Progress("type %s updated", r.Value.Name)
	}

	if failed > 0 {
		return failedTargets(failed, "types")
	}
	return nil
}

// uploadComponents exports, uploads and publishes components, then deletes
// every uploaded archive from the document store, including archives whose
// import or publish failed.
func (s *AssetService) uploadComponents(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	archives, err := s.components.ExportComponents(ctx, names)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	uploads := settle(ctx, s.cfg.Concurrency, names, func(ctx context.Context, name string) (string, error) {
		path, ok := archives[name]
		if !ok {
			return "", domain.ErrNotFound("component %s was not exported", name)
		}
		return s.components.UploadComponent(ctx, name, path)
	})

	var (
		fileIDs []string
		errs    []error
	)
	for _, r := range uploads {
		if r.Value != "" {
			fileIDs = append(fileIDs, r.Value)
		}
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	for i, r := range settle(ctx, s.cfg.Concurrency, fileIDs, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, s.server.DeleteFile(ctx, id)
	}) {
		if r.Err != nil {
			s.logger.Warn("delete uploaded file failed", "file", fileIDs[i], "error", r.Err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return nil
}
