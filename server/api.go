// Package server
package server

import (
	"context"
	"errors"

	"github.com/labstack/echo"

	"github.com/daoforge/governor-backend/api"
	"github.com/daoforge/governor-backend/types"
	"github.com/daoforge/governor-backend/utils"
)

func (s *Server) Ping(c echo.Context) error {
	return api.OK.Build(c)
}

func (s *Server) Status(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.apiTimeout)
	defer cancel()
	status, err := s.syncStatus(ctx)
	if err != nil {
		return api.InternalServer.Build(c)
	}
	return api.OK.SetData(status).Build(c)
}

func (s *Server) Proposals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.apiTimeout)
	defer cancel()
	proposals, err := s.proposalList(ctx, c.QueryParam("address"))
	if err != nil {
		return api.InternalServer.Build(c)
	}
	return api.OK.SetData(proposals).Build(c)
}

func (s *Server) Proposal(c echo.Context) error {
	id := c.Param("id")
	if _, ok := utils.ParseBigInt(id); !ok {
		return api.Invalid.Build(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.apiTimeout)
	defer cancel()
	p, err := s.proposalByID(ctx, id, c.QueryParam("address"))
	if err != nil {
		if errors.Is(err, types.ErrProposalNotFound) {
			return api.NotFound.Build(c)
		}
		return api.InternalServer.Build(c)
	}
	return api.OK.SetData(p).Build(c)
}

func (s *Server) Tally(c echo.Context) error {
	id := c.Param("id")
	if _, ok := utils.ParseBigInt(id); !ok {
		return api.Invalid.Build(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.apiTimeout)
	defer cancel()
	p, err := s.proposalByID(ctx, id, "")
	if err != nil {
		if errors.Is(err, types.ErrProposalNotFound) {
			return api.NotFound.Build(c)
		}
		return api.InternalServer.Build(c)
	}
	return api.OK.SetData(p.Tally).Build(c)
}

func (s *Server) Eligibility(c echo.Context) error {
	id := c.Param("id")
	if _, ok := utils.ParseBigInt(id); !ok {
		return api.Invalid.Build(c)
	}
	account := c.QueryParam("address")
	if account == "" {
		return api.Invalid.Build(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.apiTimeout)
	defer cancel()
	snap, err := s.eligibilityFor(ctx, id, account)
	if err != nil {
		if errors.Is(err, types.ErrProposalNotFound) {
			return api.NotFound.Build(c)
		}
		return api.InternalServer.Build(c)
	}
	return api.OK.SetData(snap).Build(c)
}

func (s *Server) Annotations(c echo.Context) error {
	id := c.Param("id")
	if _, ok := utils.ParseBigInt(id); !ok {
		return api.Invalid.Build(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.apiTimeout)
	defer cancel()
	annotations, err := s.db.Annotations(ctx, id)
	if err != nil {
		return api.InternalServer.Build(c)
	}
	return api.OK.SetData(annotations).Build(c)
}

func (s *Server) UpsertAnnotation(c echo.Context) error {
	id := c.Param("id")
	if _, ok := utils.ParseBigInt(id); !ok {
		return api.Invalid.Build(c)
	}
	var annotation types.Annotation
	if err := c.Bind(&annotation); err != nil {
		return api.Invalid.Build(c)
	}
	if annotation.Key == "" {
		return api.Invalid.Build(c)
	}
	annotation.ProposalID = id
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.apiTimeout)
	defer cancel()
	if err := s.db.UpsertAnnotation(ctx, &annotation); err != nil {
		return api.InternalServer.Build(c)
	}
	return api.OK.SetData(annotation).Build(c)
}

func (s *Server) DeleteAnnotation(c echo.Context) error {
	id := c.Param("id")
	if _, ok := utils.ParseBigInt(id); !ok {
		return api.Invalid.Build(c)
	}
	key := c.Param("key")
	if key == "" {
		return api.Invalid.Build(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.apiTimeout)
	defer cancel()
	if err := s.db.DeleteAnnotation(ctx, id, key); err != nil {
		return api.InternalServer.Build(c)
	}
	return api.OK.Build(c)
}

type refreshRequest struct {
	Action string `json:"action"`
	TxHash string `json:"txHash"`
}

var validActions = map[string]bool{
	"vote":     true,
	"propose":  true,
	"delegate": true,
}

// Refresh is called after an external write (vote, proposal, delegation)
// was submitted. It does not wait for the transaction itself: the retry
// scheduler converges the published view once the write is visible.
func (s *Server) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if !validActions[req.Action] {
		return api.Invalid.Build(c)
	}
	if err := s.NotifyAction(req.Action, req.TxHash); err != nil {
		return api.InternalServer.Build(c)
	}
	return api.OK.Build(c)
}
