package api

import (
	"net/http"

	"acidbase/internal/domain"
)

type createSimulationRequest struct {
	UserID     string                       `json:"userId"`
	Parameters *domain.SimulationParameters `json:"parameters"`
}

type createSimulationResponse struct {
	Simulation domain.Simulation `json:"simulation"`
	Results    domain.Results    `json:"results"`
}

func (s *Server) createSimulation(w http.ResponseWriter, r *http.Request) {
	var req createSimulationRequest
	if err := decodeJSON(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	claims, ok, err := s.authenticate(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Token invalid")
		return
	}
	userID := req.UserID
	if ok {
		userID = claims.UserID
	}

	sim, res, err := s.sims.Run(r.Context(), userID, req.Parameters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, createSimulationResponse{Simulation: sim, Results: res})
}

func (s *Server) listSimulations(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	sims, err := s.sims.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, sims)
}

func (s *Server) getSimulation(w http.ResponseWriter, r *http.Request) {
	sim, err := s.sims.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, sim)
}

func (s *Server) getResults(w http.ResponseWriter, r *http.Request) {
	res, err := s.sims.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.sims.Chart(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, cfg)
}

func (s *Server) deleteSimulation(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	if err := s.sims.Delete(r.Context(), claims, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	token, u, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, loginResponse{Token: token, User: u})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	u, err := s.users.Get(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, u)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, users)
}

type setRoleRequest struct {
	Role domain.Role `json:"role"`
}

func (s *Server) setRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if err := decodeJSON(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.users.SetRole(r.Context(), r.PathValue("id"), req.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, u)
}
