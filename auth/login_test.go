package auth_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/auth"
	"github.com/kimm528/ringfitmanager/fitlife"
	fitlifeTest "github.com/kimm528/ringfitmanager/fitlife/test"
)

var _ = Describe("LoginService", func() {
	var vendor *fitlifeTest.MockClient
	var tokens *auth.TokenManager
	var service auth.LoginService

	BeforeEach(func() {
		vendor = fitlifeTest.NewMockClient(gomock.NewController(GinkgoT()))
		var err error
		tokens, err = auth.NewTokenManagerWithClock("top-secret", time.Hour, time.Now)
		Expect(err).ToNot(HaveOccurred())
		service = auth.NewLoginService(auth.LoginParams{
			Fitlife: vendor,
			Tokens:  tokens,
			Logger:  zap.NewNop().Sugar(),
		})
	})

	It("requires credentials", func() {
		_, err := service.Login(context.Background(), " ", "secret")
		Expect(err).To(MatchError(auth.ErrCredentialsRequired))
	})

	It("issues a session for valid vendor credentials", func() {
		vendor.EXPECT().Login(gomock.Any(), "park", "secret").Return(&fitlife.LoginResult{
			Token: "vendor-token",
			Admin: fitlife.Admin{Id: "a-1", Name: "Park", Role: "admin"},
		}, nil)

		session, err := service.Login(context.Background(), "park", "secret")
		Expect(err).ToNot(HaveOccurred())
		Expect(session.Admin.SubjectId).To(Equal("a-1"))
		Expect(session.Admin.Role).To(Equal(auth.RoleAdmin))

		validated, err := tokens.Validate(session.Token)
		Expect(err).ToNot(HaveOccurred())
		Expect(validated.SubjectId).To(Equal("a-1"))
		Expect(validated.Name).To(Equal("Park"))
	})

	It("falls back to the login id as subject", func() {
		vendor.EXPECT().Login(gomock.Any(), "park", "secret").Return(&fitlife.LoginResult{}, nil)

		session, err := service.Login(context.Background(), "park", "secret")
		Expect(err).ToNot(HaveOccurred())
		Expect(session.Admin.SubjectId).To(Equal("park"))
		Expect(session.Admin.Role).To(Equal(auth.RoleViewer))
	})

	It("returns vendor rejections", func() {
		vendor.EXPECT().Login(gomock.Any(), "park", "wrong").Return(nil, fitlife.ErrInvalidCredentials)

		_, err := service.Login(context.Background(), "park", "wrong")
		Expect(err).To(MatchError(fitlife.ErrInvalidCredentials))
	})
})
